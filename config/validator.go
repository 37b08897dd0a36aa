package config

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/orbs-network/scribe/log"
	"reflect"
	"runtime"
	"strings"
	"time"
)

type validator struct {
	logger log.Logger
}

func NewValidator(logger log.Logger) *validator {
	return &validator{logger: logger}
}

func (v *validator) Validate(cfg NodeConfig) {
	v.requireGT(cfg.TallyCountWatchInterval, cfg.TallyCallTimeout, "tally call timeout must be less than the count watch interval")
	v.requireGT(cfg.TallyPollInterval, cfg.TallyCallTimeout, "tally call timeout must be less than the poll interval")
	v.requireNonEmpty(cfg.EthereumEndpoint, "ethereum endpoint must be configured")

	if !common.IsHexAddress(cfg.TallyContractAddress()) {
		v.fail("tally contract address is not a valid ethereum address", log.String("address", cfg.TallyContractAddress()))
	}

	if cfg.TallyMaxCandidates() == 0 {
		v.fail("tally max candidates must be positive")
	}
}

func (v *validator) requireGT(d1 func() time.Duration, d2 func() time.Duration, msg string) {
	if d1() <= d2() {
		v.fail(msg, log.Stringable(funcName(d1), d1()), log.Stringable(funcName(d2), d2()))
	}
}

func (v *validator) requireNonEmpty(s func() string, msg string) {
	if s() == "" {
		v.fail(msg, log.String(funcName(s), s()))
	}
}

func (v *validator) fail(msg string, fields ...*log.Field) {
	v.logger.Error(msg, fields...)
	panic(msg)
}

func funcName(i interface{}) string {
	fullName := runtime.FuncForPC(reflect.ValueOf(i).Pointer()).Name()
	lastDot := strings.LastIndex(fullName, ".")
	return strings.TrimSuffix(fullName[lastDot+1:], "-fm")
}
