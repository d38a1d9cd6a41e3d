// Package locale renders the module's log and diagnostic messages from an
// embedded catalog, keeping message text out of the code that emits it.
package locale

import (
	"embed"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed active.en.toml
var localeFS embed.FS

var localizer *i18n.Localizer

func init() {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	if _, err := bundle.LoadMessageFileFS(localeFS, "active.en.toml"); err != nil {
		panic(err)
	}
	localizer = i18n.NewLocalizer(bundle, language.English.String())
}

// Message renders the message identified by id with the given template
// data. Unknown ids fall back to the id itself.
func Message(id string, data map[string]any) string {
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		return id
	}
	return msg
}
