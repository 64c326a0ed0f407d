package authz

import (
	"testing"

	"user-service/internal/auth"
	"user-service/internal/domain/user"

	"github.com/stretchr/testify/assert"
)

const (
	aliceID = "6a4c2f1e-9d3b-4c8a-b5e7-2f0d1a6c9e41"
	bobID   = "0f8e7d6c-5b4a-4392-a1b0-c9d8e7f6a5b4"
)

func userCred(id string, level user.AccessLevel) *auth.Credential {
	return &auth.Credential{Kind: auth.CredentialKindUser, UserID: id, AccessLevel: level}
}

func systemCred() *auth.Credential {
	return &auth.Credential{Kind: auth.CredentialKindSystem}
}

func TestEngine_Decide(t *testing.T) {
	engine := New()

	tests := []struct {
		name   string
		cred   *auth.Credential
		op     Operation
		target string
		permit bool
		reason Reason
	}{
		{"nil credential list", nil, OperationList, "", false, ReasonMissingCredential},
		{"nil credential get", nil, OperationGet, aliceID, false, ReasonMissingCredential},
		{"nil credential delete self alias", nil, OperationDelete, SelfAlias, false, ReasonMissingCredential},

		{"system list", systemCred(), OperationList, "", true, ""},
		{"system get", systemCred(), OperationGet, aliceID, true, ""},
		{"system create", systemCred(), OperationCreate, "", true, ""},
		{"system update", systemCred(), OperationUpdate, aliceID, true, ""},
		{"system delete", systemCred(), OperationDelete, aliceID, true, ""},
		{"system get self alias", systemCred(), OperationGet, SelfAlias, false, ReasonNotSelf},
		{"system update self alias", systemCred(), OperationUpdate, SelfAlias, false, ReasonNotSelf},
		{"system delete self alias", systemCred(), OperationDelete, SelfAlias, false, ReasonNotSelf},

		{"basic list", userCred(aliceID, user.AccessLevelBasic), OperationList, "", false, ReasonInsufficientRole},
		{"basic create", userCred(aliceID, user.AccessLevelBasic), OperationCreate, "", false, ReasonInsufficientRole},
		{"basic get self by id", userCred(aliceID, user.AccessLevelBasic), OperationGet, aliceID, true, ""},
		{"basic get self alias", userCred(aliceID, user.AccessLevelBasic), OperationGet, SelfAlias, true, ""},
		{"basic get other", userCred(aliceID, user.AccessLevelBasic), OperationGet, bobID, false, ReasonNotSelf},
		{"basic update self alias", userCred(aliceID, user.AccessLevelBasic), OperationUpdate, SelfAlias, true, ""},
		{"basic update other", userCred(aliceID, user.AccessLevelBasic), OperationUpdate, bobID, false, ReasonNotSelf},
		{"basic delete self", userCred(aliceID, user.AccessLevelBasic), OperationDelete, aliceID, false, ReasonInsufficientRole},
		{"basic delete self alias", userCred(aliceID, user.AccessLevelBasic), OperationDelete, SelfAlias, false, ReasonInsufficientRole},
		{"basic delete other", userCred(aliceID, user.AccessLevelBasic), OperationDelete, bobID, false, ReasonInsufficientRole},

		{"admin list", userCred(aliceID, user.AccessLevelAdmin), OperationList, "", true, ""},
		{"admin create", userCred(aliceID, user.AccessLevelAdmin), OperationCreate, "", true, ""},
		{"admin get other", userCred(aliceID, user.AccessLevelAdmin), OperationGet, bobID, true, ""},
		{"admin update other", userCred(aliceID, user.AccessLevelAdmin), OperationUpdate, bobID, true, ""},
		{"admin delete other", userCred(aliceID, user.AccessLevelAdmin), OperationDelete, bobID, true, ""},
		{"admin delete self alias", userCred(aliceID, user.AccessLevelAdmin), OperationDelete, SelfAlias, true, ""},

		{"sys admin list", userCred(aliceID, user.AccessLevelSysAdmin), OperationList, "", true, ""},
		{"sys admin delete other", userCred(aliceID, user.AccessLevelSysAdmin), OperationDelete, bobID, true, ""},
		{"sys admin get self alias", userCred(aliceID, user.AccessLevelSysAdmin), OperationGet, SelfAlias, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := engine.Decide(tt.cred, tt.op, tt.target)
			assert.Equal(t, tt.permit, decision.Permit)
			assert.Equal(t, tt.reason, decision.Reason)
		})
	}
}

func TestEngine_Decide_UnknownRoleNeverPermitted(t *testing.T) {
	engine := New()
	cred := userCred(aliceID, user.AccessLevel("SUPERUSER"))

	ops := []struct {
		op     Operation
		target string
	}{
		{OperationList, ""},
		{OperationGet, aliceID},
		{OperationCreate, ""},
		{OperationUpdate, aliceID},
		{OperationDelete, aliceID},
	}

	for _, tt := range ops {
		decision := engine.Decide(cred, tt.op, tt.target)
		assert.False(t, decision.Permit, "operation %s", tt.op)
	}
}

func TestEngine_Decide_CustomWriteRoles(t *testing.T) {
	engine := New(user.AccessLevelSysAdmin)

	admin := userCred(aliceID, user.AccessLevelAdmin)
	sysAdmin := userCred(bobID, user.AccessLevelSysAdmin)

	assert.False(t, engine.Decide(admin, OperationList, "").Permit)
	assert.False(t, engine.Decide(admin, OperationCreate, "").Permit)
	assert.True(t, engine.Decide(sysAdmin, OperationList, "").Permit)
	assert.True(t, engine.Decide(sysAdmin, OperationCreate, "").Permit)

	// Narrowing the write roles does not touch the read path.
	assert.True(t, engine.Decide(admin, OperationGet, bobID).Permit)
}

func TestEngine_DecideUpdateFields(t *testing.T) {
	engine := New()

	tests := []struct {
		name   string
		cred   *auth.Credential
		fields []string
		permit bool
		reason Reason
	}{
		{"nil credential", nil, []string{"first_name"}, false, ReasonMissingCredential},
		{"basic profile fields", userCred(aliceID, user.AccessLevelBasic), []string{"first_name", "last_name"}, true, ""},
		{"basic email", userCred(aliceID, user.AccessLevelBasic), []string{"email"}, false, ReasonInsufficientRole},
		{"basic password", userCred(aliceID, user.AccessLevelBasic), []string{"password"}, false, ReasonInsufficientRole},
		{"basic access level", userCred(aliceID, user.AccessLevelBasic), []string{"access_level"}, false, ReasonInsufficientRole},
		{"basic mixed", userCred(aliceID, user.AccessLevelBasic), []string{"first_name", "email"}, false, ReasonInsufficientRole},
		{"admin identity fields", userCred(aliceID, user.AccessLevelAdmin), []string{"email", "password", "access_level"}, true, ""},
		{"sys admin identity fields", userCred(aliceID, user.AccessLevelSysAdmin), []string{"access_level"}, true, ""},
		{"system identity fields", systemCred(), []string{"email", "password"}, true, ""},
		{"basic no fields", userCred(aliceID, user.AccessLevelBasic), nil, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := engine.DecideUpdateFields(tt.cred, tt.fields)
			assert.Equal(t, tt.permit, decision.Permit)
			assert.Equal(t, tt.reason, decision.Reason)
		})
	}
}

func TestIsIdentityField(t *testing.T) {
	assert.True(t, IsIdentityField("email"))
	assert.True(t, IsIdentityField("password"))
	assert.True(t, IsIdentityField("access_level"))
	assert.False(t, IsIdentityField("first_name"))
	assert.False(t, IsIdentityField("active"))
}
