// Package badge maps completed levels to badges.
//
// The level table is static data; TryAward is the only function that changes
// a user's badge list and it never touches persistence.
package badge

import (
	"time"

	"github.com/codecraftkids/codecraft-api/internal/domain/entity"
)

// Definition describes the badge earned for one level.
type Definition struct {
	Name        string
	Icon        string
	Description string
}

var definitions = map[int]Definition{
	1:  {Name: "Python Beginner", Icon: "🐍", Description: "Wrote your very first lines of Python"},
	2:  {Name: "Variable Voyager", Icon: "📦", Description: "Stored and changed values with variables"},
	3:  {Name: "Loop Legend", Icon: "🔁", Description: "Made the computer repeat itself with loops"},
	4:  {Name: "Decision Maker", Icon: "🔀", Description: "Used if/else to choose what happens next"},
	5:  {Name: "Function Wizard", Icon: "✨", Description: "Built reusable spells with functions"},
	6:  {Name: "List Master", Icon: "📋", Description: "Organised data in lists"},
	7:  {Name: "Dictionary Detective", Icon: "🔍", Description: "Looked things up with dictionaries"},
	8:  {Name: "String Sorcerer", Icon: "🧵", Description: "Sliced and joined text like a pro"},
	9:  {Name: "Bug Hunter", Icon: "🐞", Description: "Tracked down and fixed tricky bugs"},
	10: {Name: "Python Pro", Icon: "🏆", Description: "Finished every beginner quest"},
}

// Lookup returns the badge definition for level, if any.
func Lookup(level int) (Definition, bool) {
	d, ok := definitions[level]
	return d, ok
}

// Levels returns how many levels carry a badge.
func Levels() int { return len(definitions) }

// TryAward appends the badge for level to u when a definition exists and the
// user does not hold one for that level yet. CurrentBadge follows the new icon.
// It returns the awarded badge, or nil when nothing changed.
func TryAward(u *entity.User, level int, now time.Time) *entity.Badge {
	def, ok := definitions[level]
	if !ok || u.HasBadgeFor(level) {
		return nil
	}
	b := entity.Badge{
		Level:       level,
		Name:        def.Name,
		Icon:        def.Icon,
		Description: def.Description,
		EarnedAt:    now.UTC(),
	}
	u.Badges = append(u.Badges, b)
	u.CurrentBadge = b.Icon
	return &b
}
