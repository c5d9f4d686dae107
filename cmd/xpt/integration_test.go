//go:build integration

package main

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"io"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xpttools/xpt/pkg/xpttest"
)

// getProjectRoot returns the path to the module root
func getProjectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	// cmd/xpt/integration_test.go -> project root
	return filepath.Join(filepath.Dir(filename), "..", "..")
}

// startServe builds the binary and starts "xpt serve" with piped stdio.
func startServe(t *testing.T) (io.WriteCloser, *bufio.Scanner) {
	t.Helper()
	projectRoot := getProjectRoot()
	binary := filepath.Join(t.TempDir(), "xpt")

	buildCmd := exec.Command("go", "build", "-o", binary, "./cmd/xpt")
	buildCmd.Dir = projectRoot
	output, err := buildCmd.CombinedOutput()
	require.NoError(t, err, "build failed: %s", string(output))

	cmd := exec.Command(binary, "serve")
	stdin, err := cmd.StdinPipe()
	require.NoError(t, err)
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())

	t.Cleanup(func() {
		stdin.Close()
		cmd.Process.Kill()
		cmd.Wait()
	})

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return stdin, scanner
}

// waitForLine waits for the next line with a timeout
func waitForLine(scanner *bufio.Scanner, timeout time.Duration) bool {
	done := make(chan bool, 1)
	go func() {
		done <- scanner.Scan()
	}()

	select {
	case result := <-done:
		return result
	case <-time.After(timeout):
		return false
	}
}

func readResponse(t *testing.T, scanner *bufio.Scanner) map[string]interface{} {
	t.Helper()
	require.True(t, waitForLine(scanner, 30*time.Second), "should receive a response")
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &response))
	return response
}

func encodedTransport(names ...string) string {
	var members []xpttest.Member
	for _, name := range names {
		members = append(members, demoMember(name))
	}
	return base64.StdEncoding.EncodeToString(xpttest.File{Library: true, Members: members}.Bytes())
}

func TestServeIntegration_ReadySignal(t *testing.T) {
	_, scanner := startServe(t)

	ready := readResponse(t, scanner)
	assert.True(t, ready["success"].(bool))
	assert.Equal(t, "ready", ready["type"])
}

func TestServeIntegration_Decode(t *testing.T) {
	stdin, scanner := startServe(t)
	readResponse(t, scanner)

	request := `{"type":"decode","payload":{"content":"` + encodedTransport("DM", "AE") + `","source":"study.xpt"}}` + "\n"
	_, err := stdin.Write([]byte(request))
	require.NoError(t, err)

	response := readResponse(t, scanner)
	assert.True(t, response["success"].(bool), "decode should succeed")
	assert.Equal(t, "decode", response["type"])

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "study.xpt", data["source"])
	datasets := data["datasets"].([]interface{})
	require.Len(t, datasets, 2)
	assert.Equal(t, "AE", datasets[1].(map[string]interface{})["name"])
}

func TestServeIntegration_DecodeBatch(t *testing.T) {
	stdin, scanner := startServe(t)
	readResponse(t, scanner)

	request := `{"type":"decode_batch","payload":{"items":[{"source":"dm.xpt","content":"` + encodedTransport("DM") +
		`"},{"source":"junk.xpt","content":"` + base64.StdEncoding.EncodeToString([]byte("junk")) + `"}]}}` + "\n"
	_, err := stdin.Write([]byte(request))
	require.NoError(t, err)

	response := readResponse(t, scanner)
	assert.True(t, response["success"].(bool), "batch decode should succeed")
	assert.Equal(t, "decode_batch", response["type"])

	results := response["data"].(map[string]interface{})["results"].([]interface{})
	require.Len(t, results, 2)
	assert.NotEmpty(t, results[1].(map[string]interface{})["error"])
}

func TestServeIntegration_CloseCommand(t *testing.T) {
	stdin, scanner := startServe(t)
	readResponse(t, scanner)

	_, err := stdin.Write([]byte(`{"type":"close","payload":{}}` + "\n"))
	require.NoError(t, err)

	assert.False(t, waitForLine(scanner, 10*time.Second), "stdout should close after close request")
}

func TestServeIntegration_MultipleDecodes(t *testing.T) {
	stdin, scanner := startServe(t)
	readResponse(t, scanner)

	for i, name := range []string{"DM", "AE", "LB"} {
		request := `{"type":"decode","payload":{"content":"` + encodedTransport(name) + `","source":"` + name + `.xpt"}}` + "\n"
		_, err := stdin.Write([]byte(request))
		require.NoError(t, err)

		response := readResponse(t, scanner)
		assert.True(t, response["success"].(bool), "decode %d should succeed", i)
	}
}
