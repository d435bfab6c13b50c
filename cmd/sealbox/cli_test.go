package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/absfs/sealbox"
)

// fastKDF keeps key derivation cheap in tests
var fastKDF = []string{"--kdf", "pbkdf2", "--kdf-iterations", "1000"}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_EncryptDecrypt(t *testing.T) {
	envelope, err := runCLI(t, "", append([]string{"encrypt", "hello world", "--password", "pw123"}, fastKDF...)...)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	envelope = strings.TrimSpace(envelope)

	text, err := runCLI(t, "", append([]string{"decrypt", envelope, "--password", "pw123"}, fastKDF...)...)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if text != "hello world" {
		t.Errorf("decrypt = %q, want %q", text, "hello world")
	}

	_, err = runCLI(t, "", append([]string{"decrypt", envelope, "--password", "wrong"}, fastKDF...)...)
	if sealbox.KindOf(err) != sealbox.KindAuthenticationFailure {
		t.Errorf("wrong password: got %v, want authentication failure", err)
	}
}

func TestCLI_EncryptFromStdin(t *testing.T) {
	envelope, err := runCLI(t, "from stdin", append([]string{"encrypt", "--password", "pw"}, fastKDF...)...)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	text, err := runCLI(t, envelope, append([]string{"decrypt", "--password", "pw"}, fastKDF...)...)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if text != "from stdin" {
		t.Errorf("decrypt = %q", text)
	}
}

func TestCLI_DoubleEncryption(t *testing.T) {
	envelope, err := runCLI(t, "", append([]string{"encrypt", "two locks",
		"--password", "A", "--second-password", "B"}, fastKDF...)...)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	envelope = strings.TrimSpace(envelope)

	text, err := runCLI(t, "", append([]string{"decrypt", envelope,
		"--password", "A", "--second-password", "B"}, fastKDF...)...)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if text != "two locks" {
		t.Errorf("decrypt = %q", text)
	}

	_, err = runCLI(t, "", append([]string{"decrypt", envelope,
		"--password", "B", "--second-password", "A"}, fastKDF...)...)
	if err == nil {
		t.Error("swapped passwords should fail")
	}
}

func TestCLI_PasswordSources(t *testing.T) {
	dir := t.TempDir()
	pwFile := filepath.Join(dir, "pw")
	if err := os.WriteFile(pwFile, []byte("from-file\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SEALBOX_TEST_PW", "from-file")

	envelope, err := runCLI(t, "", append([]string{"encrypt", "x", "--password-file", pwFile}, fastKDF...)...)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	text, err := runCLI(t, "", append([]string{"decrypt", strings.TrimSpace(envelope), "--password-env", "SEALBOX_TEST_PW"}, fastKDF...)...)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if text != "x" {
		t.Errorf("decrypt = %q", text)
	}

	if _, err := runCLI(t, "", "encrypt", "x"); err == nil {
		t.Error("missing password should fail")
	}
	if _, err := runCLI(t, "", "encrypt", "x", "--password", "a", "--password-env", "SEALBOX_TEST_PW"); err == nil {
		t.Error("two password sources should fail")
	}
}

func TestCLI_Reseal(t *testing.T) {
	envelope, err := runCLI(t, "", append([]string{"encrypt", "rotate me", "--password", "old"}, fastKDF...)...)
	if err != nil {
		t.Fatal(err)
	}
	resealed, err := runCLI(t, "", append([]string{"reseal", strings.TrimSpace(envelope),
		"--password", "old", "--new-password", "new"}, fastKDF...)...)
	if err != nil {
		t.Fatalf("reseal failed: %v", err)
	}
	text, err := runCLI(t, "", append([]string{"decrypt", strings.TrimSpace(resealed), "--password", "new"}, fastKDF...)...)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if text != "rotate me" {
		t.Errorf("decrypt = %q", text)
	}
}

func TestCLI_Files(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.bin")
	content := make([]byte, 256)
	for i := range content {
		content[i] = byte(i)
	}
	if err := os.WriteFile(src, content, 0600); err != nil {
		t.Fatal(err)
	}

	envPath := filepath.Join(dir, "photo.sealed")
	if _, err := runCLI(t, "", append([]string{"encrypt-file", src, "-o", envPath, "--password", "pw"}, fastKDF...)...); err != nil {
		t.Fatalf("encrypt-file failed: %v", err)
	}

	dst := filepath.Join(dir, "restored.bin")
	if _, err := runCLI(t, "", append([]string{"decrypt-file", envPath, "-o", dst, "--password", "pw"}, fastKDF...)...); err != nil {
		t.Fatalf("decrypt-file failed: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Error("restored file differs from original")
	}

	if _, err := runCLI(t, "", append([]string{"decrypt-file", envPath, "-o", dst, "--password", "nope"}, fastKDF...)...); err == nil {
		t.Error("wrong password should fail")
	}
}

func TestCLI_Keygen(t *testing.T) {
	out, err := runCLI(t, "", "keygen", "--length", "16", "-n", "3", "--symbols=false", "--exclude-ambiguous")
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d keys, want 3", len(lines))
	}
	for _, k := range lines {
		if len(k) != 16 {
			t.Errorf("key %q has length %d", k, len(k))
		}
		if strings.ContainsAny(k, sealbox.AmbiguousChars+sealbox.SymbolChars) {
			t.Errorf("key %q contains excluded characters", k)
		}
	}

	_, err = runCLI(t, "", "keygen", "--upper=false", "--lower=false", "--digits=false", "--symbols=false")
	if sealbox.KindOf(err) != sealbox.KindInvalidConfiguration {
		t.Errorf("no classes: got %v, want invalid configuration", err)
	}
}

func TestCLI_Vault(t *testing.T) {
	vaultPath := filepath.Join(t.TempDir(), "nested", "vault.json")
	vault := []string{"--vault", vaultPath}

	if _, err := runCLI(t, "", append([]string{"vault", "store", "a", "key-a"}, vault...)...); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	if _, err := runCLI(t, "", append([]string{"vault", "store", "b", "key-b", "--hours", "0"}, vault...)...); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	out, err := runCLI(t, "", append([]string{"vault", "get", "a"}, vault...)...)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if strings.TrimSpace(out) != "key-a" {
		t.Errorf("get = %q", out)
	}

	_, err = runCLI(t, "", append([]string{"vault", "get", "b"}, vault...)...)
	if sealbox.KindOf(err) != sealbox.KindKeyExpired {
		t.Errorf("expired get: got %v", err)
	}

	out, err = runCLI(t, "", append([]string{"vault", "list"}, vault...)...)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "active") || !strings.Contains(out, "expired") {
		t.Errorf("list output missing status:\n%s", out)
	}

	if _, err := runCLI(t, "", append([]string{"vault", "delete", "a"}, vault...)...); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	_, err = runCLI(t, "", append([]string{"vault", "get", "a"}, vault...)...)
	if sealbox.KindOf(err) != sealbox.KindKeyNotFound {
		t.Errorf("deleted get: got %v", err)
	}

	out, err = runCLI(t, "", append([]string{"vault", "purge"}, vault...)...)
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if strings.TrimSpace(out) != "1" {
		t.Errorf("purge = %q, want 1", out)
	}

	out, err = runCLI(t, "", append([]string{"vault", "issue", "--length", "20"}, vault...)...)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	fields := strings.Split(strings.TrimSpace(out), "\t")
	if len(fields) != 2 || len(fields[1]) != 20 {
		t.Fatalf("issue output = %q", out)
	}
	got, err := runCLI(t, "", append([]string{"vault", "get", fields[0]}, vault...)...)
	if err != nil {
		t.Fatalf("get issued failed: %v", err)
	}
	if strings.TrimSpace(got) != fields[1] {
		t.Errorf("issued key = %q, want %q", got, fields[1])
	}
}

func TestCLI_KDFIterationsRange(t *testing.T) {
	for _, n := range []string{"-1", "4294967297"} {
		_, err := runCLI(t, "", "encrypt", "x", "--password", "pw", "--kdf-iterations="+n)
		if sealbox.KindOf(err) != sealbox.KindInvalidConfiguration {
			t.Errorf("--kdf-iterations %s: got %v, want invalid configuration", n, err)
		}
		if err != nil && !strings.Contains(err.Error(), "kdf-iterations") {
			t.Errorf("--kdf-iterations %s: error should name the flag: %v", n, err)
		}
	}
}

func TestCLI_VaultHoursRange(t *testing.T) {
	vault := []string{"--vault", filepath.Join(t.TempDir(), "vault.json")}

	for _, hours := range []string{"3e6", "NaN", "+Inf", "-1"} {
		_, err := runCLI(t, "", append([]string{"vault", "store", "k", "v", "--hours=" + hours}, vault...)...)
		if sealbox.KindOf(err) != sealbox.KindInvalidConfiguration {
			t.Errorf("store --hours %s: got %v", hours, err)
		}
		_, err = runCLI(t, "", append([]string{"vault", "issue", "--hours=" + hours}, vault...)...)
		if sealbox.KindOf(err) != sealbox.KindInvalidConfiguration {
			t.Errorf("issue --hours %s: got %v", hours, err)
		}
	}
}
