package infra

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// The portal has exactly three roles, so the policy ships with the binary
// instead of living in the database.
var policies = [][]string{
	{"EMPLOYEE", "requests", "create"},
	{"EMPLOYEE", "requests", "read_own"},

	{"HEAD", "requests", "read_department"},
	{"HEAD", "requests", "approve"},

	{"HR", "requests", "read_all"},
	{"HR", "employees", "read"},
	{"HR", "employees", "write"},
}

func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for _, p := range policies {
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}

	return enforcer, nil
}
