package testutil

import "testing"

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("TESTUTIL_SAMPLE", "")
	if got := getEnvOrDefault("TESTUTIL_SAMPLE", "fallback"); got != "fallback" {
		t.Fatalf("getEnvOrDefault() = %q, want fallback", got)
	}

	t.Setenv("TESTUTIL_SAMPLE", "set")
	if got := getEnvOrDefault("TESTUTIL_SAMPLE", "fallback"); got != "set" {
		t.Fatalf("getEnvOrDefault() = %q, want set", got)
	}
}

func TestEnvBool(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", "y"} {
		t.Setenv("TESTUTIL_BOOL", v)
		if !envBool("TESTUTIL_BOOL") {
			t.Fatalf("envBool(%q) = false, want true", v)
		}
	}
	t.Setenv("TESTUTIL_BOOL", "off")
	if envBool("TESTUTIL_BOOL") {
		t.Fatal("envBool(off) = true, want false")
	}
}

func TestBuilders(t *testing.T) {
	n := NewNotification("n1").WithCluster("dev").Read().Build()
	if n.Cluster() != "dev" || !n.Read {
		t.Fatalf("unexpected notification: %+v", n)
	}

	list := Notifications("x", 3)
	if len(list) != 3 || list[2].ID != "x-2" {
		t.Fatalf("unexpected notifications: %+v", list)
	}

	cs := Clusters("dev", "running", "stage", "stopped")
	if len(cs) != 2 || cs[1].Status != "stopped" {
		t.Fatalf("unexpected clusters: %+v", cs)
	}

	if !FixedTimeFunc(TestTime())().Equal(TestTime()) {
		t.Fatal("FixedTimeFunc mismatch")
	}
}
