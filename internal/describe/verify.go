package describe

import (
	"errors"
	"fmt"
)

// verifier runs several engines and insists they agree.
type verifier struct {
	primary Engine
	others  []Engine
}

// Verify returns an Engine that describes with primary and every engine in
// others. When any rendered result differs from the primary's, Describe
// fails with ErrInconsistentResult. Errors must also match in kind: an
// engine failing where another succeeds is an inconsistency.
func Verify(primary Engine, others ...Engine) Engine {
	return &verifier{primary: primary, others: others}
}

func (v *verifier) Describe(rev string) (Result, error) {
	want, wantErr := v.primary.Describe(rev)

	for i, e := range v.others {
		got, err := e.Describe(rev)
		switch {
		case wantErr != nil && err != nil:
			if !sameErrorKind(wantErr, err) {
				return Result{}, fmt.Errorf("%w: engine 0 failed with %v, engine %d with %v",
					ErrInconsistentResult, wantErr, i+1, err)
			}
		case wantErr != nil || err != nil:
			return Result{}, fmt.Errorf("%w: engine 0 error %v, engine %d error %v",
				ErrInconsistentResult, wantErr, i+1, err)
		case want.String() != got.String():
			return Result{}, fmt.Errorf("%w: engine 0 gave %q, engine %d gave %q",
				ErrInconsistentResult, want.String(), i+1, got.String())
		}
	}

	return want, wantErr
}

func sameErrorKind(a, b error) bool {
	var ra, rb *RefNotFoundError
	if errors.As(a, &ra) != errors.As(b, &rb) {
		return false
	}
	var ga, gb *GraphError
	return errors.As(a, &ga) == errors.As(b, &gb)
}
