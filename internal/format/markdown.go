// Package format converts the Markdown our handlers write into plain text
// plus Telegram message entities. Telegram's own Markdown parse mode is
// fussy about unescaped special characters in user content (task titles can
// contain anything), so we strip markers ourselves and attach entities with
// explicit offsets instead.
package format

import (
	"regexp"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ParseResult contains plain text and the message entities to send with it.
type ParseResult struct {
	Text     string
	Entities []tgbotapi.MessageEntity
}

var (
	headerRe = regexp.MustCompile(`(?m)^#{1,6}\s+(.+?)$`)

	// One alternation so matches are consumed left to right; by the time a
	// marker is stripped, everything before it is already plain text and the
	// recorded offset stays valid.
	markerRe = regexp.MustCompile(`\*\*(.+?)\*\*|~~(.+?)~~|` + "`([^`\n]+?)`" + `|_([^_\n]+?)_`)
)

// Group index in markerRe to Telegram entity type.
var markerTypes = []string{"bold", "strikethrough", "code", "italic"}

// Parse converts supported Markdown (# headers rendered as bold, **bold**,
// _italic_, ~~strikethrough~~, `code`) into text plus entities. Offsets and lengths
// are in UTF-16 code units, which is what Telegram counts in.
func Parse(text string) ParseResult {
	// Headers become bold lines before marker extraction.
	text = headerRe.ReplaceAllString(text, "**$1**")

	var entities []tgbotapi.MessageEntity
	for {
		loc := markerRe.FindStringSubmatchIndex(text)
		if loc == nil {
			break
		}
		inner, entityType := matchedGroup(text, loc)
		entities = append(entities, tgbotapi.MessageEntity{
			Type:   entityType,
			Offset: utf16Len(text[:loc[0]]),
			Length: utf16Len(inner),
		})
		text = text[:loc[0]] + inner + text[loc[1]:]
	}

	return ParseResult{
		Text:     strings.TrimRight(text, " \n"),
		Entities: entities,
	}
}

// matchedGroup returns the inner content and entity type of whichever
// alternative in markerRe matched.
func matchedGroup(text string, loc []int) (string, string) {
	for i, entityType := range markerTypes {
		start, end := loc[2+2*i], loc[3+2*i]
		if start >= 0 {
			return text[start:end], entityType
		}
	}
	return "", ""
}

// utf16Len returns the number of UTF-16 code units needed for s.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2 // surrogate pair
		} else {
			n++
		}
	}
	return n
}
