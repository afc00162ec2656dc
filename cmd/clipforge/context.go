package main

import (
	"strings"
	"sync"

	"clipforge/internal/config"
)

type commandContext struct {
	serverFlag *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(serverFlag, configFlag *string) *commandContext {
	return &commandContext{
		serverFlag: serverFlag,
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// serverAddr resolves the daemon API address: the --server flag wins,
// otherwise the configured bind address is used.
func (c *commandContext) serverAddr() (string, error) {
	if c.serverFlag != nil {
		if addr := strings.TrimSpace(*c.serverFlag); addr != "" {
			return addr, nil
		}
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(cfg.Paths.APIBind), nil
}

func (c *commandContext) apiClient() (*daemonClient, error) {
	addr, err := c.serverAddr()
	if err != nil {
		return nil, err
	}
	return newDaemonClient(addr)
}
