package icon

// Icon identifies a symbol in the registry.
type Icon int

const (
	Fail Icon = iota + 1
	Success
	Warn
	Info
	Play
	Pause
	Ended
	Audio
	Image
	Text
	Frame
	Mark
	Progress
	Search
)

var icons = map[Icon]*iconDef{
	Fail: {
		emoji:   "💀",
		nerd:    "",
		plain:   "x",
		kaomoji: "(×﹏×)",
		squares: "🟥",
	},
	Success: {
		emoji:   "🎉",
		nerd:    "",
		plain:   "ok",
		kaomoji: "(ᵔᴥᵔ)",
		squares: "🟩",
	},
	Warn: {
		emoji:   "⚠️",
		nerd:    "",
		plain:   "!",
		kaomoji: "(・_・;)",
		squares: "🟨",
	},
	Info: {
		emoji:   "ℹ️",
		nerd:    "",
		plain:   "i",
		kaomoji: "(・ω・)",
		squares: "🟦",
	},
	Play: {
		emoji:   "▶️",
		nerd:    "",
		plain:   ">",
		kaomoji: "(ง •̀_•́)ง",
		squares: "▶",
	},
	Pause: {
		emoji:   "⏸️",
		nerd:    "",
		plain:   "||",
		kaomoji: "(－_－) zzZ",
		squares: "⏸",
	},
	Ended: {
		emoji:   "🏁",
		nerd:    "",
		plain:   "end",
		kaomoji: "(￣▽￣)ノ",
		squares: "⏹",
	},
	Audio: {
		emoji:   "🎵",
		nerd:    "",
		plain:   "~",
		kaomoji: "♪(´▽｀)",
		squares: "🟪",
	},
	Image: {
		emoji:   "🖼️",
		nerd:    "",
		plain:   "#",
		kaomoji: "[◕‿◕]",
		squares: "🟫",
	},
	Text: {
		emoji:   "📜",
		nerd:    "",
		plain:   "T",
		kaomoji: "φ(．．)",
		squares: "⬜",
	},
	Frame: {
		emoji:   "🎞️",
		nerd:    "",
		plain:   "@",
		kaomoji: "[▓▓]",
		squares: "🔳",
	},
	Mark: {
		emoji:   "📍",
		nerd:    "",
		plain:   "*",
		kaomoji: "(＊)",
		squares: "▪",
	},
	Progress: {
		emoji:   "⏳",
		nerd:    "",
		plain:   "...",
		kaomoji: "(￣ー￣)",
		squares: "🔲",
	},
	Search: {
		emoji:   "🔍",
		nerd:    "",
		plain:   "?",
		kaomoji: "(・・ )?",
		squares: "🔎",
	},
}
