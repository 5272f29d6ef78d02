package langdetect

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantCode string
	}{
		{"english", "Please schedule the meeting for tomorrow afternoon and send the notes to everyone.", "en"},
		{"chinese", "请把会议安排在明天下午，并把会议记录发给所有人。", "zh"},
		{"empty", "", ""},
		{"whitespace", "   \n\t", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, name := Detect(tt.text)
			if code != tt.wantCode {
				t.Errorf("Detect(%q) code = %q, want %q", tt.text, code, tt.wantCode)
			}
			if tt.wantCode != "" && name == "" {
				t.Errorf("expected a display name for %q", tt.wantCode)
			}
		})
	}
}
