package dungeon

// EntityTemplate определяет шаблон для создания сущности.
// Сценарий берёт из шаблона всё, что не задал сам.
type EntityTemplate struct {
	Payload          string
	Health           int
	Energy           int
	MaxEnergy        int
	Moveset          []string
	Strategy         string
	PlayerControlled bool
	PlayerFriendly   bool
}

// --- ГЕРОИ ---

var Hero = EntityTemplate{
	Payload:          "hero",
	Health:           5,
	Energy:           1,
	MaxEnergy:        2,
	Moveset:          []string{"step_macro", "step", "bump", "wait", "goto", "forward_heavy", "jab", "exit"},
	Strategy:         "rush",
	PlayerControlled: true,
	PlayerFriendly:   true,
}

// Companion - союзник под управлением стратегии.
var Companion = EntityTemplate{
	Payload:        "companion",
	Health:         4,
	MaxEnergy:      1,
	Moveset:        []string{"step", "bump", "wait"},
	Strategy:       "rush",
	PlayerFriendly: true,
}

// --- ВРАГИ ---

var Lizard = EntityTemplate{
	Payload:  "lizard",
	Health:   3,
	Moveset:  []string{"step", "bump", "wait"},
	Strategy: "rush",
}

var Brute = EntityTemplate{
	Payload:   "brute",
	Health:    6,
	Energy:    1,
	MaxEnergy: 1,
	Moveset:   []string{"step", "bump", "forward_heavy", "wait"},
	Strategy:  "rush",
}

var Sentry = EntityTemplate{
	Payload:  "sentry",
	Health:   4,
	Moveset:  []string{"bump", "jab", "wait"},
	Strategy: "stand_and_fight",
}

// Templates - шаблоны по имени для сценариев.
var Templates = map[string]EntityTemplate{
	"hero":      Hero,
	"companion": Companion,
	"lizard":    Lizard,
	"brute":     Brute,
	"sentry":    Sentry,
}
