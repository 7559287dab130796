package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codr1/saf-wrapped/internal/stats"
)

const export = `"Codi","Data","Horari","-","Nom","Informació"
"R-1","30/12/2024","20:00-21:00","","Pavelló - PISTA 3",""
"R-2","31/12/2024","20:00-21:00","","Pavelló - PISTA 1",""
"R-3","1/1/2025","10:00-11:30","","Piscina",""
`

func TestRun_File(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("WRAPPED_ENVIRONMENT", "")

	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(export), 0644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-pretty", path}, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())
	require.Contains(t, stdout.String(), "\n  \"totalReservations\": 3")

	var result stats.Result
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
	require.Equal(t, 3, result.LongestDayStreak)
	require.Equal(t, "Pavelló", result.TopRooms[0].Label)
	require.Equal(t, []stats.LabelCount{
		{Label: "20:00-21:00", Count: 2},
		{Label: "10:00-11:30", Count: 1},
	}, result.TopTimeSlots)
}

func TestRun_Stdin(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("WRAPPED_ENVIRONMENT", "")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-"}, strings.NewReader(export), &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	var result stats.Result
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
	require.Equal(t, 3, result.TotalReservations)
}

func TestRun_Failures(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("WRAPPED_ENVIRONMENT", "")

	tests := []struct {
		name  string
		args  []string
		stdin string
		want  int
	}{
		{name: "no_args", args: nil, want: exitError},
		{name: "too_many_args", args: []string{"a.csv", "b.csv"}, want: exitError},
		{name: "unknown_flag", args: []string{"-nope", "-"}, want: exitError},
		{name: "missing_file", args: []string{filepath.Join(t.TempDir(), "missing.csv")}, want: exitError},
		{name: "missing_config", args: []string{"-config", filepath.Join(t.TempDir(), "missing.yaml"), "-"}, want: exitError},
		{name: "empty_input", args: []string{"-"}, stdin: "", want: exitEmpty},
		{name: "header_only", args: []string{"-"}, stdin: `"Codi","Data","Horari","-","Nom","Informació"`, want: exitEmpty},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(test.args, strings.NewReader(test.stdin), &stdout, &stderr)
			require.Equal(t, test.want, code)
			require.Empty(t, stdout.String())
		})
	}
}
