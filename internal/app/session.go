package app

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bactn/vidloader/pkg/loader/common"
)

// Session describes one offline playback session: the manifest the
// download manager fetched first, and the headers its fetches used.
type Session struct {
	MasterURL string            `yaml:"master_url" json:"master_url"`
	FileType  string            `yaml:"file_type" json:"file_type"`
	Headers   map[string]string `yaml:"headers" json:"headers"`
}

// LoadSession loads a session description from a YAML file
func LoadSession(path string) (*Session, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("session file does not exist: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	session := &Session{}
	if err := yaml.Unmarshal(data, session); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}

	if session.FileType == "" {
		session.FileType = string(common.FileTypeMaster)
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate checks the session description
func (s *Session) Validate() error {
	if s.MasterURL == "" {
		return fmt.Errorf("session master_url is required")
	}

	u, err := url.Parse(s.MasterURL)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("session master_url must be an absolute URL: %s", s.MasterURL)
	}

	switch common.FileType(s.FileType) {
	case common.FileTypeMaster, common.FileTypeVariant:
	default:
		return fmt.Errorf("unknown session file_type: %s", s.FileType)
	}

	return nil
}

// ResourceType returns the session's manifest kind
func (s *Session) ResourceType() common.FileType {
	return common.FileType(s.FileType)
}
