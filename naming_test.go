package smcore

import "testing"

func TestSnakeToPascal(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"name", "Name"},
		{"training_job_name", "TrainingJobName"},
		{"role_arn", "RoleArn"},
		{"next_token", "NextToken"},
		{"volume_size_in_gb", "VolumeSizeInGB"},
		{"volume_size_in_g_b", "VolumeSizeInGB"},
		{"total_size_in_gb", "TotalSizeInGB"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SnakeToPascal(tt.input); got != tt.want {
				t.Errorf("SnakeToPascal(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPascalToSnake(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"Name", "name"},
		{"TrainingJobName", "training_job_name"},
		{"NextToken", "next_token"},
		{"VolumeSizeInGB", "volume_size_in_gb"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := PascalToSnake(tt.input); got != tt.want {
				t.Errorf("PascalToSnake(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// Non-acronym identifiers must survive a full round trip in both directions.
func TestCaseConversionRoundTrip(t *testing.T) {
	snakes := []string{"training_job_name", "endpoint_config_name", "status", "creation_time"}
	for _, s := range snakes {
		if got := PascalToSnake(SnakeToPascal(s)); got != s {
			t.Errorf("round trip of %q via Pascal = %q", s, got)
		}
	}
	pascals := []string{"TrainingJobName", "EndpointConfigName", "Status", "CreationTime"}
	for _, p := range pascals {
		if got := SnakeToPascal(PascalToSnake(p)); got != p {
			t.Errorf("round trip of %q via snake = %q", p, got)
		}
	}
}
