package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/reelmark-cli/reelmark/catalog"
	"github.com/reelmark-cli/reelmark/offline"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().BoolP("index", "i", false, "Generate the JSON Schema of the download index instead of the course document")
}

// schemaCmd prints the JSON schema of the documents reelmark reads.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate JSON schemas for the course document and the download index",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(json.NewEncoder(os.Stdout).Encode(documentSchema(lo.Must(cmd.Flags().GetBool("index")))))
	},
}

func documentSchema(index bool) *jsonschema.Schema {
	reflector := new(jsonschema.Reflector)
	reflector.Anonymous = true
	reflector.Namer = func(t reflect.Type) string {
		name := t.Name()
		switch strings.ToLower(name) {
		case "video", "entry", "document":
			return filepath.Base(t.PkgPath()) + "." + name
		}

		return name
	}

	if index {
		return reflector.Reflect([]offline.Entry{})
	}
	return reflector.Reflect(&catalog.Document{})
}
