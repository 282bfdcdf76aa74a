// Package translate renders user-facing text in the caller's language.
package translate

import (
	"sync"

	"github.com/jeandeaual/go-locale"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"tlog.app/go/tlog"
)

var (
	mu      sync.RWMutex
	printer *message.Printer
	current language.Tag
)

func init() {
	registerCatalog()

	locales, err := locale.GetLocales()
	if err != nil {
		tlog.Printw("locale lookup failed", "err", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	setTag(message.MatchLanguage(locales...))
}

// From renders an en-US Sprintf format in the current language.
func From(key message.Reference, args ...any) string {
	mu.RLock()
	p := printer
	mu.RUnlock()

	return p.Sprintf(key, args...)
}

// SetLanguage switches the output language. Tags that match no catalog
// entry fall back to English.
func SetLanguage(tags ...string) language.Tag {
	tag := message.MatchLanguage(tags...)
	setTag(tag)

	return tag
}

// Language returns the tag currently used for output.
func Language() language.Tag {
	mu.RLock()
	defer mu.RUnlock()

	return current
}

func setTag(tag language.Tag) {
	mu.Lock()
	defer mu.Unlock()

	current = tag
	printer = message.NewPrinter(tag)
}

// Error is an error whose message is the en-US key rendered in the
// current language each time it is read. Values compare by key, so
// package-level sentinels keep working with errors.Is.
type Error string

func (e Error) Error() string {
	return From(string(e))
}
