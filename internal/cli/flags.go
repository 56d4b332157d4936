package cli

import (
	"fmt"

	"github.com/spf13/pflag"
	"golang.org/x/text/language"
)

// cultureValue is a pflag.Value holding an optional BCP 47 language tag.
// An unset flag leaves Tag nil, so plans load in their stored culture.
type cultureValue struct {
	tag *language.Tag
}

func (v *cultureValue) String() string {
	if v.tag == nil {
		return ""
	}
	return v.tag.String()
}

func (v *cultureValue) Set(s string) error {
	tag, err := language.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid culture %q: %w", s, err)
	}
	v.tag = &tag
	return nil
}

func (v *cultureValue) Type() string { return "culture" }

// Tag returns the parsed culture, or nil when the flag was not given.
func (v *cultureValue) Tag() *language.Tag { return v.tag }

// addCultureFlag registers --culture on fs.
func addCultureFlag(fs *pflag.FlagSet) *cultureValue {
	v := &cultureValue{}
	fs.Var(v, "culture", "Load plans in this culture instead of the stored one (e.g. de-DE)")
	return v
}
