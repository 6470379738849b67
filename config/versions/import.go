package versions

import (
	v0 "github.com/emoji-connoisseur/connoisseur/config/versions/v0"
	v1 "github.com/emoji-connoisseur/connoisseur/config/versions/v1"
)

func init() {
	Manager.registerVersion(0, &v0.Version{})
	Manager.registerVersion(1, &v1.Version{})
}
