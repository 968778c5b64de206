package harness

import (
	"github.com/roach88/tscale/internal/convert"
	"github.com/roach88/tscale/internal/leapsec"
	"github.com/roach88/tscale/internal/tai"
	"github.com/roach88/tscale/internal/utc"
)

// Operation names accepted in scenario steps.
const (
	OpTAIParse         = "tai.parse"
	OpTAIPlus          = "tai.plus"
	OpTAIMinus         = "tai.minus"
	OpTAIWithNano      = "tai.with_nano"
	OpUTCOf            = "utc.of"
	OpUTCParse         = "utc.parse"
	OpUTCPlus          = "utc.plus"
	OpUTCMinus         = "utc.minus"
	OpUTCWithMJD       = "utc.with_mjd"
	OpUTCWithNanoOfDay = "utc.with_nano_of_day"
	OpConvertToUTC     = "convert.to_utc"
	OpConvertToTAI     = "convert.to_tai"
)

// operation executes a step and returns the canonical text of its result.
type operation func(s *Step, rules leapsec.Rules) (string, error)

var operations = map[string]operation{
	OpTAIParse: func(s *Step, _ leapsec.Rules) (string, error) {
		t, err := tai.Parse(s.Input)
		if err != nil {
			return "", err
		}
		return t.String(), nil
	},
	OpTAIPlus: func(s *Step, _ leapsec.Rules) (string, error) {
		return taiStep(s, func(t tai.Instant) (tai.Instant, error) {
			return t.Plus(s.Seconds, s.Nanos)
		})
	},
	OpTAIMinus: func(s *Step, _ leapsec.Rules) (string, error) {
		return taiStep(s, func(t tai.Instant) (tai.Instant, error) {
			return t.Minus(s.Seconds, s.Nanos)
		})
	},
	OpTAIWithNano: func(s *Step, _ leapsec.Rules) (string, error) {
		return taiStep(s, func(t tai.Instant) (tai.Instant, error) {
			return t.WithNano(*s.Nano)
		})
	},
	OpUTCOf: func(s *Step, rules leapsec.Rules) (string, error) {
		u, err := utc.Of(*s.MJD, *s.NanoOfDay, rules)
		if err != nil {
			return "", err
		}
		return u.String(), nil
	},
	OpUTCParse: func(s *Step, rules leapsec.Rules) (string, error) {
		return utcStep(s, rules, func(u utc.Instant) (utc.Instant, error) {
			return u, nil
		})
	},
	OpUTCPlus: func(s *Step, rules leapsec.Rules) (string, error) {
		return utcStep(s, rules, func(u utc.Instant) (utc.Instant, error) {
			return u.Plus(s.Seconds, s.Nanos, rules)
		})
	},
	OpUTCMinus: func(s *Step, rules leapsec.Rules) (string, error) {
		return utcStep(s, rules, func(u utc.Instant) (utc.Instant, error) {
			return u.Minus(s.Seconds, s.Nanos, rules)
		})
	},
	OpUTCWithMJD: func(s *Step, rules leapsec.Rules) (string, error) {
		return utcStep(s, rules, func(u utc.Instant) (utc.Instant, error) {
			return u.WithModifiedJulianDay(*s.MJD, rules)
		})
	},
	OpUTCWithNanoOfDay: func(s *Step, rules leapsec.Rules) (string, error) {
		return utcStep(s, rules, func(u utc.Instant) (utc.Instant, error) {
			return u.WithNanoOfDay(*s.NanoOfDay, rules)
		})
	},
	OpConvertToUTC: func(s *Step, rules leapsec.Rules) (string, error) {
		t, err := tai.Parse(s.Input)
		if err != nil {
			return "", err
		}
		u, err := convert.ToUTC(t, rules)
		if err != nil {
			return "", err
		}
		return u.String(), nil
	},
	OpConvertToTAI: func(s *Step, rules leapsec.Rules) (string, error) {
		u, err := utc.Parse(s.Input, rules)
		if err != nil {
			return "", err
		}
		t, err := convert.ToTAI(u, rules)
		if err != nil {
			return "", err
		}
		return t.String(), nil
	},
}

func taiStep(s *Step, fn func(tai.Instant) (tai.Instant, error)) (string, error) {
	t, err := tai.Parse(s.Input)
	if err != nil {
		return "", err
	}
	out, err := fn(t)
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

func utcStep(s *Step, rules leapsec.Rules, fn func(utc.Instant) (utc.Instant, error)) (string, error) {
	u, err := utc.Parse(s.Input, rules)
	if err != nil {
		return "", err
	}
	out, err := fn(u)
	if err != nil {
		return "", err
	}
	return out.String(), nil
}
