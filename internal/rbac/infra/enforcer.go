package infra

import "github.com/casbin/casbin/v2"

// NewEnforcer builds a casbin enforcer from the model file only.
// Policies are loaded per company at request time, not here.
func NewEnforcer(modelPath string) (*casbin.Enforcer, error) {
	return casbin.NewEnforcer(modelPath)
}
