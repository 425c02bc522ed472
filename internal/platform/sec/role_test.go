// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/biblio/internal/platform/sec"
)

/*
TestRole_Capabilities verifies the capability matrix for every known role.
*/
func TestRole_Capabilities(t *testing.T) {
	tests := []struct {
		name          string
		role          sec.Role
		manageCatalog bool
		deleteRecords bool
		viewDashboard bool
		manageUsers   bool
	}{
		{"admin", sec.RoleAdmin, true, true, true, true},
		{"librarian", sec.RoleLibrarian, true, false, true, false},
		{"member", sec.RoleMember, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.manageCatalog, tt.role.CanManageCatalog())
			assert.Equal(t, tt.deleteRecords, tt.role.CanDeleteRecords())
			assert.Equal(t, tt.viewDashboard, tt.role.CanViewDashboard())
			assert.Equal(t, tt.manageUsers, tt.role.CanManageUsers())
		})
	}
}

/*
TestRole_IsValid ensures unknown role strings carry no capabilities.
*/
func TestRole_IsValid(t *testing.T) {
	assert.True(t, sec.RoleAdmin.IsValid())
	assert.True(t, sec.RoleLibrarian.IsValid())
	assert.True(t, sec.RoleMember.IsValid())

	// A tampered or stale token must be powerless
	forged := sec.Role("superuser")
	assert.False(t, forged.IsValid())
	assert.False(t, forged.CanManageCatalog())
	assert.False(t, forged.CanDeleteRecords())
	assert.False(t, forged.IsStaff())
}

/*
TestHashToken_Deterministic confirms token hashing is stable so stored
digests can be matched on rotation.
*/
func TestHashToken_Deterministic(t *testing.T) {
	first := sec.HashToken("abc123")
	second := sec.HashToken("abc123")
	other := sec.HashToken("abc124")

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.Len(t, first, 64)
}

/*
TestGenerateSecureToken verifies length and uniqueness of random tokens.
*/
func TestGenerateSecureToken(t *testing.T) {
	tokenA, err := sec.GenerateSecureToken(32)
	assert.NoError(t, err)
	assert.Len(t, tokenA, 64)

	tokenB, err := sec.GenerateSecureToken(32)
	assert.NoError(t, err)
	assert.NotEqual(t, tokenA, tokenB)
}
