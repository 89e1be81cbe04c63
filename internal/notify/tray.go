package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/averyhall/tend/internal/constants"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

// TrayScheduler posts schedule/cancel requests to the local tray agent's
// webhook. The agent advertises its port and shared secret through a
// lockfile; the advertised PID is verified to belong to a live tend-tray
// process before anything is sent.
type TrayScheduler struct{}

func NewTrayScheduler() *TrayScheduler {
	return &TrayScheduler{}
}

func (t *TrayScheduler) Schedule(requests []Request) error {
	if len(requests) == 0 {
		return nil
	}

	port, secret, err := t.connect()
	if err != nil {
		return err
	}

	return postJSON(port, secret, "/schedule", requests)
}

func (t *TrayScheduler) Cancel(occurrenceID string) error {
	port, secret, err := t.connect()
	if err != nil {
		return err
	}

	payload := struct {
		OccurrenceID string `json:"occurrence_id"`
	}{OccurrenceID: occurrenceID}

	return postJSON(port, secret, "/cancel", payload)
}

func (t *TrayScheduler) connect() (port, secret string, err error) {
	configDir, err := GetTrayAppConfigDir()
	if err != nil {
		return "", "", err
	}
	return findAndValidateTrayProcess(filepath.Join(configDir, constants.NotifierLockfileName))
}

// GetTrayAppConfigDir returns the configuration directory used by the
// tray application.
func GetTrayAppConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}

	trayConfigDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	// settings.json can point the lockfile somewhere else
	settingsPath := filepath.Join(trayConfigDir, "settings.json")
	if _, err := os.Stat(settingsPath); err == nil {
		data, err := os.ReadFile(settingsPath)
		if err == nil {
			var store struct {
				Settings struct {
					LockfileDir *string `json:"lockfile_dir"`
				} `json:"settings"`
			}
			if err := json.Unmarshal(data, &store); err == nil {
				if store.Settings.LockfileDir != nil && *store.Settings.LockfileDir != "" {
					return *store.Settings.LockfileDir, nil
				}
			}
		}
	}

	return trayConfigDir, nil
}

func findAndValidateTrayProcess(lockfilePath string) (string, string, error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return "", "", errors.New("tend-tray is not running")
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return "", "", errors.New("lockfile is malformed")
	}

	port := parts[0]
	if strings.TrimSpace(port) == "" {
		return "", "", errors.New("port in lockfile is empty")
	}
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return "", "", errors.New("invalid port number in lockfile")
	}
	if portNum < 1 || portNum > 65535 {
		return "", "", fmt.Errorf("port number %d is outside valid range (1-65535)", portNum)
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", "", errors.New("invalid process ID in lockfile")
	}
	secret := parts[2]
	if strings.TrimSpace(secret) == "" {
		return "", "", errors.New("secret in lockfile is empty")
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return "", "", errors.New("tend-tray process not running")
	}

	if !strings.HasPrefix(process.Executable(), "tend-tray") {
		return "", "", fmt.Errorf("process with PID %d is not tend-tray (is %s)", pid, process.Executable())
	}

	return port, secret, nil
}

func postJSON(port, secret, path string, payload any) error {
	url := fmt.Sprintf("http://127.0.0.1:%s%s", port, path)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tend-Secret", secret)

	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("tray request failed with status %d: %s", res.StatusCode, string(body))
}
