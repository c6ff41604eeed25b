package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/eugenenazirov/propbind/internal/configuration"
)

// Bundles holds one message map per locale. The default locale's bundle is
// the parent of every other bundle.
type Bundles struct {
	tags       []language.Tag
	messages   []map[string]string
	matcher    language.Matcher
	hasDefault bool
}

// LoadBundles groups messages.<locale>.<key> entries of cfg by locale.
func LoadBundles(cfg *configuration.Configuration) (*Bundles, error) {
	groups := cfg.Group(MessagesPrefix)
	def := cfg.Locale()

	b := &Bundles{}
	for name, values := range groups.All() {
		tag, err := language.Parse(strings.ReplaceAll(name, "_", "-"))
		if err != nil {
			return nil, fmt.Errorf("locale %q: %w", name, err)
		}
		msgs := make(map[string]string, len(values))
		for k, v := range values {
			msgs[k] = v
		}

		if tag.String() == def.String() {
			b.tags = append([]language.Tag{tag}, b.tags...)
			b.messages = append([]map[string]string{msgs}, b.messages...)
			b.hasDefault = true
			continue
		}
		b.tags = append(b.tags, tag)
		b.messages = append(b.messages, msgs)
	}

	if len(b.tags) > 0 {
		b.matcher = language.NewMatcher(b.tags)
	}
	return b, nil
}

// Locales returns the locales that have a bundle, default first.
func (b *Bundles) Locales() []language.Tag {
	return append([]language.Tag(nil), b.tags...)
}

// Bundle returns the messages for the best match of tag layered over the default bundle.
func (b *Bundles) Bundle(tag language.Tag) map[string]string {
	out := map[string]string{}
	if b.matcher == nil {
		return out
	}

	if b.hasDefault {
		for k, v := range b.messages[0] {
			out[k] = v
		}
	}

	_, idx, confidence := b.matcher.Match(tag)
	if confidence == language.No && b.hasDefault {
		return out
	}
	for k, v := range b.messages[idx] {
		out[k] = v
	}
	return out
}
