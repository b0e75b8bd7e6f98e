package icon

import (
	"testing"

	"github.com/reelmark-cli/reelmark/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestGet(t *testing.T) {
	Convey("Given a registered icon", t, func() {
		Convey("It renders for each variant", func() {
			for _, target := range []Icon{Fail, Success, Progress, Done, Resume, Restart, Offline, Missing} {
				for _, variant := range AvailableVariants() {
					viper.Set(key.IconsVariant, variant)
					So(Get(target), ShouldNotBeEmpty)
				}
			}
		})

		Convey("It returns empty for an unknown variant", func() {
			viper.Set(key.IconsVariant, "")
			So(Get(Done), ShouldBeEmpty)
		})
	})

	Convey("Given an unregistered icon", t, func() {
		viper.Set(key.IconsVariant, plain)
		So(Get(Icon(99)), ShouldBeEmpty)
	})
}
