package slack

import (
	"reflect"
	"testing"
)

func TestConfigMissing(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{
			name: "empty",
			want: []string{"bot_token", "signing_secret"},
		},
		{
			name: "no_signing_secret",
			cfg:  Config{BotToken: "xoxb-1"},
			want: []string{"signing_secret"},
		},
		{
			name: "complete",
			cfg:  Config{BotToken: "xoxb-1", SigningSecret: "2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Missing(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Missing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	secrets := map[string]string{"bot_token": "xoxb-thrippy", "signing_secret": "thrippy"}

	got := Config{BotToken: "xoxb-flag"}.Merge(secrets)
	want := Config{BotToken: "xoxb-flag", SigningSecret: "thrippy"}
	if got != want {
		t.Errorf("Merge() = %+v, want %+v", got, want)
	}

	if got := (Config{}).Merge(nil); got != (Config{}) {
		t.Errorf("Merge(nil) = %+v, want empty", got)
	}
}
