package config

import "testing"

func Test_readEnvBool(t *testing.T) {
	tests := []struct {
		env   string
		start bool
		want  bool
	}{
		{"", true, true},
		{"", false, false},
		{"yes", false, true},
		{"ON", false, true},
		{"1", false, true},
		{"off", true, false},
		{"0", true, false},
		{"maybe", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("SCRAPBOOK_TEST_BOOL", tt.env)
			got := tt.start
			readEnvBool("SCRAPBOOK_TEST_BOOL", &got)
			if got != tt.want {
				t.Errorf("readEnvBool(%q) = %v, want %v", tt.env, got, tt.want)
			}
		})
	}
}

func Test_readEnvInt(t *testing.T) {
	t.Setenv("SCRAPBOOK_TEST_INT", "42")
	v := 1
	readEnvInt("SCRAPBOOK_TEST_INT", &v)
	if v != 42 {
		t.Errorf("readEnvInt() = %d, want 42", v)
	}
	t.Setenv("SCRAPBOOK_TEST_INT", "nope")
	readEnvInt("SCRAPBOOK_TEST_INT", &v)
	if v != 42 {
		t.Errorf("readEnvInt() with invalid value changed it to %d", v)
	}
}
