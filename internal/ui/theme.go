package ui

import "strings"

// Theme bundles palette + symbols + box borders.
// All UI helpers pull from `current`.
type Theme struct {
	Title, Muted, Accent, Success, Error, Votes string
	BarFull, BarEmpty                           string
	CornerTL, CornerTR, CornerBL, CornerBR      string
	H, V                                        string
	SymVote, SymBullet                          string
}

var current Theme

func init() { SetTheme("classic") }

func SetTheme(name string) {
	switch strings.ToLower(name) {
	case "neon":
		current = Theme{
			Title: "\033[95m", // bright magenta
			Muted: fgGray, Accent: "\033[96m",
			Success: fgGreen, Error: fgRed, Votes: "\033[93m",
			BarFull: "▰", BarEmpty: "▱",
			CornerTL: "╭", CornerTR: "╮", CornerBL: "╰", CornerBR: "╯",
			H: "─", V: "│",
			SymVote: "⬆", SymBullet: "✦",
		}
	case "mono":
		disableColor = true
		current = Theme{
			Title: "", Muted: "", Accent: "", Success: "", Error: "", Votes: "",
			BarFull: "#", BarEmpty: ".",
			CornerTL: "+", CornerTR: "+", CornerBL: "+", CornerBR: "+",
			H: "-", V: "|",
			SymVote: "^", SymBullet: "*",
		}
	default: // classic
		current = Theme{
			Title: bold, Muted: fgGray, Accent: fgBlue,
			Success: fgGreen, Error: fgRed, Votes: fgYellow,
			BarFull: "█", BarEmpty: "░",
			CornerTL: "┌", CornerTR: "┐", CornerBL: "└", CornerBR: "┘",
			H: "─", V: "│",
			SymVote: "⬆", SymBullet: "•",
		}
	}
}

// Expose what renderers need
func Current() Theme { return current }
