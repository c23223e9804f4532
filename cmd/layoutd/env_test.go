package main

import "testing"

func TestEnvBool(t *testing.T) {
	t.Setenv("LC_TEST_BOOL", "")
	if !envBool("LC_TEST_BOOL", true) {
		t.Fatalf("empty value should keep default")
	}
	t.Setenv("LC_TEST_BOOL", "false")
	if envBool("LC_TEST_BOOL", true) {
		t.Fatalf("expected false")
	}
	t.Setenv("LC_TEST_BOOL", "nope")
	if !envBool("LC_TEST_BOOL", true) {
		t.Fatalf("unparsable value should keep default")
	}
}

func TestDefaultEnableAdminHTTP(t *testing.T) {
	t.Setenv("DEPLOY_ENV", "")
	if !defaultEnableAdminHTTP() {
		t.Fatalf("expected admin enabled for local runs")
	}
	t.Setenv("DEPLOY_ENV", "Production")
	if defaultEnableAdminHTTP() {
		t.Fatalf("expected admin disabled in production")
	}
}
