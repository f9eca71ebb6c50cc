package spice

import (
	"bufio"
	"io"
	"strings"
)

// card is one logical SPICE line after comment stripping and continuation
// joining. Line is the physical line the card starts on.
type card struct {
	Line int
	Text string
}

const maxLineBytes = 16 * 1024 * 1024

// splitCards turns physical lines into logical cards. Lines starting with
// '*' are comments, '$' starts an inline comment, a leading '+' continues
// the previous card and everything between .control and .endc is dropped.
func splitCards(r io.Reader) ([]card, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var (
		cards   []card
		lineNum int
		control bool
	)
	for scanner.Scan() {
		lineNum++
		text := scanner.Text()
		if i := strings.IndexByte(text, '$'); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
		if text == "" || text[0] == '*' {
			continue
		}

		if control {
			if hasDirective(text, ".endc") {
				control = false
			}
			continue
		}
		if hasDirective(text, ".control") {
			control = true
			continue
		}

		if text[0] == '+' {
			rest := strings.TrimSpace(text[1:])
			if rest == "" {
				continue
			}
			if len(cards) > 0 {
				last := &cards[len(cards)-1]
				last.Text += " " + rest
				continue
			}
			text = rest
		}
		cards = append(cards, card{Line: lineNum, Text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}

func hasDirective(text, directive string) bool {
	if len(text) < len(directive) || !strings.EqualFold(text[:len(directive)], directive) {
		return false
	}
	return len(text) == len(directive) || text[len(directive)] == ' ' || text[len(directive)] == '\t'
}
