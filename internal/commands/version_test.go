package commands

import (
	"strings"
	"testing"
)

func TestVersionList(t *testing.T) {
	env := NewTestEnv(t)
	env.Connect()
	env.HandleJSON("GET /artifacts/"+testArtifactID+"/", 200, testArtifactJSON)

	res := env.MustRun("version", "list", testArtifactID)

	for _, want := range []string{"Slug", "2024-05-02", "urn:trovi:contents:chameleon:abc"} {
		if !strings.Contains(res.Stdout, want) {
			t.Errorf("Expected %q in output:\n%s", want, res.Stdout)
		}
	}
}

func TestVersionCreate(t *testing.T) {
	env := NewTestEnv(t)
	env.Connect()
	env.HandleJSON("POST /artifacts/"+testArtifactID+"/versions/", 201,
		`{"slug":"2024-05-02.1","contents":{"urn":"urn:trovi:contents:chameleon:abc"}}`)

	res := env.MustRun("version", "create", testArtifactID, "urn:trovi:contents:chameleon:abc",
		"--link", "dataset=urn:trovi:contents:zenodo:10.5281/1",
		"--created-at", "2024-05-02")

	if !strings.Contains(res.Stdout, "Created version 2024-05-02.1") {
		t.Errorf("Unexpected output:\n%s", res.Stdout)
	}

	req := env.Requests()[0]
	if got := req.Query["force"]; len(got) != 1 || got[0] != "True" {
		t.Errorf("Backdated versions must be forced, force = %v", got)
	}
	body := decodeBody(t, req)
	if body["created_at"] != "2024-05-02T00:00:00Z" {
		t.Errorf("created_at = %v", body["created_at"])
	}
	contents := body["contents"].(map[string]any)
	if contents["urn"] != "urn:trovi:contents:chameleon:abc" {
		t.Errorf("contents = %v", contents)
	}
	links := body["links"].([]any)
	link := links[0].(map[string]any)
	if link["label"] != "dataset" || link["urn"] != "urn:trovi:contents:zenodo:10.5281/1" {
		t.Errorf("links = %v", links)
	}
}

func TestVersionCreateRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"bad urn", []string{"urn:trovi:contents"}, "invalid contents urn"},
		{"bad link", []string{"urn:trovi:contents:chameleon:abc", "--link", "nolabel"}, "invalid link"},
		{"bad date", []string{"urn:trovi:contents:chameleon:abc", "--created-at", "yesterday"}, "invalid --created-at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := NewTestEnv(t)
			env.Connect()

			args := append([]string{"version", "create", testArtifactID}, tt.args...)
			res := env.Run("", args...)
			if res.Err == nil || !strings.Contains(res.Err.Error(), tt.wantErr) {
				t.Errorf("Expected %q error, got: %v", tt.wantErr, res.Err)
			}
			if len(env.Requests()) != 0 {
				t.Error("No request should be sent for invalid input")
			}
		})
	}
}

func TestVersionDelete(t *testing.T) {
	env := NewTestEnv(t)
	env.Connect()
	env.HandleJSON("DELETE /artifacts/"+testArtifactID+"/versions/1/", 204, "")

	res := env.MustRun("version", "delete", testArtifactID, "1", "--yes")

	if !strings.Contains(res.Stdout, "Deleted version 1") {
		t.Errorf("Unexpected output:\n%s", res.Stdout)
	}
	if len(env.Requests()) != 1 {
		t.Errorf("Expected one DELETE, got %+v", env.Requests())
	}
}

func TestVersionDeleteConfirm(t *testing.T) {
	tests := []struct {
		answer     string
		wantDelete bool
	}{
		{"y\n", true},
		{"n\n", false},
		{"\n", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.answer), func(t *testing.T) {
			env := NewTestEnv(t)
			env.Connect()
			env.HandleJSON("DELETE /artifacts/"+testArtifactID+"/versions/1/", 204, "")

			res := env.Run(tt.answer, "version", "delete", testArtifactID, "1")
			if res.Err != nil {
				t.Fatalf("delete failed: %v", res.Err)
			}

			deleted := len(env.Requests()) == 1
			if deleted != tt.wantDelete {
				t.Errorf("deleted = %v, want %v", deleted, tt.wantDelete)
			}
			if !tt.wantDelete && !strings.Contains(res.Stderr, "Aborted.") {
				t.Errorf("Expected Aborted. on stderr, got %q", res.Stderr)
			}
		})
	}
}

func TestVersionMigrate(t *testing.T) {
	env := NewTestEnv(t)
	env.Connect()
	env.HandleJSON("POST /artifacts/"+testArtifactID+"/versions/1/migration/", 202,
		`{"status":"queued","message":"Migration started"}`)

	res := env.MustRun("version", "migrate", testArtifactID, "1")

	if !strings.Contains(res.Stdout, "queued") {
		t.Errorf("Expected migration status in output:\n%s", res.Stdout)
	}
	if body := decodeBody(t, env.Requests()[0]); body["backend"] != "zenodo" {
		t.Errorf("backend = %v", body["backend"])
	}
}

func TestVersionMetric(t *testing.T) {
	env := NewTestEnv(t)
	env.Connect()
	env.HandleJSON("PUT /artifacts/"+testArtifactID+"/versions/1/metrics/", 204, "")

	env.MustRun("version", "metric", testArtifactID, "1", "--origin", "tok", "--amount", "3")

	q := env.Requests()[0].Query
	if q["metric"][0] != "access_count" || q["amount"][0] != "3" || q["origin"][0] != "tok" {
		t.Errorf("Unexpected query: %v", q)
	}
}

func TestVersionMetricRejectsNonPositiveAmount(t *testing.T) {
	env := NewTestEnv(t)
	env.Connect()

	res := env.Run("", "version", "metric", testArtifactID, "1", "--origin", "tok", "--amount", "0")
	if res.Err == nil || !strings.Contains(res.Err.Error(), "must be positive") {
		t.Errorf("Expected amount error, got: %v", res.Err)
	}
}
