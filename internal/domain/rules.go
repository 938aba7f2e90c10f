package domain

import "time"

// Rules holds the tunable numbers of the lives economy and rewards.
type Rules struct {
	MaxLives     int
	RefillCost   float64
	XPMultiplier float64
}

// DefaultRules returns the production defaults.
func DefaultRules() Rules {
	return Rules{MaxLives: 3, RefillCost: 120, XPMultiplier: 5}
}

// CanAttempt gates answer submission.
func (a *Activity) CanAttempt(isPremium bool) bool {
	return isPremium || a.Lives.Value > 0
}

// ConsumeLife takes one life. The result stays within [0, rules.MaxLives], which also pulls
// down a stored value left above a since-lowered maximum.
func (a *Activity) ConsumeLife(rules Rules, now time.Time) {
	a.Lives.set(a.Lives.Value-1, rules.MaxLives, now)
}

func (l *Lives) set(value, maxLives int, now time.Time) {
	if maxLives > 0 && value > maxLives {
		value = maxLives
	}
	if value < 0 {
		value = 0
	}
	l.Value = value
	l.UpdatedOn = now
}

// RefillLives spends walnut to restore the full lives budget.
func (a *Activity) RefillLives(rules Rules, now time.Time) error {
	if a.Lives.Value > 0 {
		return ErrAlreadyHasLife
	}
	if a.Walnut.Remaining < rules.RefillCost {
		return ErrInsufficientBalance
	}
	tx, err := NewTransaction(Debit, CategoryLifeRefill, "Life refill", rules.RefillCost, now)
	if err != nil {
		return err
	}
	if err := a.Walnut.Append(tx); err != nil {
		return err
	}
	a.Lives.set(rules.MaxLives, rules.MaxLives, now)
	return nil
}

// Reward credits walnut points and the derived xp for a correct answer.
func (a *Activity) Reward(title string, points int, rules Rules, now time.Time) error {
	if points <= 0 {
		return nil
	}
	walnut, err := NewTransaction(Credit, CategoryLearning, title, float64(points), now)
	if err != nil {
		return err
	}
	xp, err := NewTransaction(Credit, CategoryLearning, title, float64(points)*rules.XPMultiplier, now)
	if err != nil {
		return err
	}
	if err := a.Walnut.Append(walnut); err != nil {
		return err
	}
	return a.XP.Append(xp)
}

// CheckAnswer scores given against the accepted answers. Any non-empty subset of the accepted
// values counts as correct; an empty answer or more values than there are accepted answers never does.
func CheckAnswer(correct []AnswerValue, given []string) bool {
	if len(given) == 0 || len(given) > len(correct) {
		return false
	}
	accepted := make(map[string]struct{}, len(correct))
	for _, c := range correct {
		accepted[c.Value] = struct{}{}
	}
	for _, g := range given {
		if _, ok := accepted[g]; !ok {
			return false
		}
	}
	return true
}
