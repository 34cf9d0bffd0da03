package formatter

import "strings"

// TelegramFormatter prepares post text for Telegram HTML parse mode
type TelegramFormatter struct {
	maxMessageLength int
	maxCaptionLength int
}

// NewTelegramFormatter creates a new Telegram formatter
func NewTelegramFormatter() *TelegramFormatter {
	return &TelegramFormatter{
		maxMessageLength: 4000, // Telegram message limit is 4096, leave room for markup
		maxCaptionLength: 1000, // media group caption limit is 1024
	}
}

// Caption returns the post text truncated and escaped for use as a media
// group caption.
func (f *TelegramFormatter) Caption(text string) string {
	return f.EscapeHTML(f.truncate(text, f.maxCaptionLength))
}

// Message returns the post text escaped for a plain text send. Telegram
// rejects empty messages, so posts without text get a placeholder.
func (f *TelegramFormatter) Message(text string) string {
	if text == "" {
		return "(no text)"
	}
	return f.EscapeHTML(f.truncate(text, f.maxMessageLength))
}

// EscapeHTML escapes HTML special characters for Telegram
func (f *TelegramFormatter) EscapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// truncate truncates text to maxLen characters
func (f *TelegramFormatter) truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "…"
}
