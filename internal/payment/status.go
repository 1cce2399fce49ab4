package payment

import "math/rand"

// StatusSource decides whether a non-cash charge goes through.
type StatusSource interface {
	Outcome() (ok bool, refusal string)
}

type RandomStatus struct{}

func (RandomStatus) Outcome() (bool, string) {
	randomInt := rand.Intn(101) // 101 because Intn is exclusive of the upper bound
	return calcOutcome(randomInt)
}

func calcOutcome(randomInt int) (bool, string) {
	if randomInt < 95 {
		return true, ""
	}
	reason := randomInt - 95
	if reason == 0 || reason > 5 {
		return false, "unknown reason"
	}
	return false, refusalReasons[reason-1]
}

var refusalReasons = []string{
	"insufficient funds",
	"card expired",
	"card blocked",
	"issuer unavailable",
	"suspected fraud",
}

// AlwaysApprove is used for tests and offline demo mode.
type AlwaysApprove struct{}

func (AlwaysApprove) Outcome() (bool, string) { return true, "" }
