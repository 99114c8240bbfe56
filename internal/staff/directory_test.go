package staff

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"tipjar/internal/apperr"
	"tipjar/internal/config"
)

func TestDirectoryKeepsOrderAndSkipsInvalid(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	dir := New([]config.StaffEntry{
		{Name: "Alice", Address: "0x1111111111111111111111111111111111111111"},
		{Name: "", Address: "0x2222222222222222222222222222222222222222"},
		{Name: "Bob", Address: "not-an-address"},
		{Name: "Carol", Address: "0x3333333333333333333333333333333333333333"},
		{Name: "Alice", Address: "0x4444444444444444444444444444444444444444"},
	}, zap.New(core))

	members := dir.List()
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if members[0].Name != "Alice" || members[1].Name != "Carol" {
		t.Fatalf("order mismatch: %+v", members)
	}
	if members[0].Address.Hex() != "0x1111111111111111111111111111111111111111" {
		t.Fatalf("duplicate replaced the first entry: %s", members[0].Address.Hex())
	}
	if logs.Len() != 3 {
		t.Fatalf("expected 3 warnings, got %d", logs.Len())
	}
}

func TestDirectoryLookup(t *testing.T) {
	dir := New([]config.StaffEntry{
		{Name: "Alice", Address: "0x1111111111111111111111111111111111111111"},
		{Name: "Bob", Address: "0xzz"},
	}, nil)

	member, err := dir.Lookup(" Alice ")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if member.Name != "Alice" {
		t.Fatalf("unexpected member: %+v", member)
	}

	if _, err := dir.Lookup("Bob"); apperr.KindOf(err) != apperr.KindConfiguration {
		t.Fatalf("expected configuration error for misconfigured member, got %v", err)
	}
	if _, err := dir.Lookup("Zed"); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for unknown member, got %v", err)
	}
}

func TestDirectoryListIsCopy(t *testing.T) {
	dir := New([]config.StaffEntry{{Name: "Alice", Address: "0x1111111111111111111111111111111111111111"}}, nil)
	members := dir.List()
	members[0].Name = "Mallory"
	if dir.List()[0].Name != "Alice" {
		t.Fatalf("List must not expose internal state")
	}
}
