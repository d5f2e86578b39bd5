package dice

import "go.uber.org/zap"

// Roller wraps a Rand and logger to provide logged expression rolls.
// All rolls are logged at debug level with expression, dice, modifier and total.
type Roller struct {
	rng    *Rand
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with rng and logs each roll to logger.
// A nil logger disables logging.
//
// Precondition: rng must be non-nil.
func NewLoggedRoller(rng *Rand, logger *zap.Logger) *Roller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roller{rng: rng, logger: logger}
}

// Rand returns the wrapped Rand.
func (r *Roller) Rand() *Rand { return r.rng }

// Roll evaluates expr and logs the result at debug level.
func (r *Roller) Roll(expr Expression) RollResult {
	result := r.rng.Roll(expr)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}
