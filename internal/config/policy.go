package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// InvitePolicy governs invitation batches and pending-invite lifecycle.
type InvitePolicy struct {
	MaxBatchSize           int    `mapstructure:"maxBatchSize"`
	ExpiryDays             int    `mapstructure:"expiryDays"`
	DefaultRole            string `mapstructure:"defaultRole"`
	MaxPendingPerWorkspace int    `mapstructure:"maxPendingPerWorkspace"`
}

func DefaultInvitePolicy() InvitePolicy {
	return InvitePolicy{
		MaxBatchSize:           50,
		ExpiryDays:             14,
		DefaultRole:            "viewer",
		MaxPendingPerWorkspace: 200,
	}
}

// PolicyHolder exposes the current invite policy with hot reload.
type PolicyHolder struct {
	current atomic.Value // holds InvitePolicy
}

func NewPolicyHolder() (*PolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("policy")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/workspaces/config")
	v.AddConfigPath("/etc/workspaces")
	v.AddConfigPath(".")

	v.SetEnvPrefix("WORKSPACES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultInvitePolicy()
		v.SetDefault("invites.maxBatchSize", defaults.MaxBatchSize)
		v.SetDefault("invites.expiryDays", defaults.ExpiryDays)
		v.SetDefault("invites.defaultRole", defaults.DefaultRole)
		v.SetDefault("invites.maxPendingPerWorkspace", defaults.MaxPendingPerWorkspace)
	}

	var policy InvitePolicy
	if err := v.UnmarshalKey("invites", &policy); err != nil {
		return nil, err
	}
	if err := validateInvitePolicy(policy); err != nil {
		return nil, err
	}

	holder := &PolicyHolder{}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated InvitePolicy
		if err := v.UnmarshalKey("invites", &updated); err != nil {
			log.Printf("[policy] reload failed: %v", err)
			return
		}
		if err := validateInvitePolicy(updated); err != nil {
			log.Printf("[policy] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[policy] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticPolicyHolder returns a holder pinned to the given policy,
// with no file watching. Intended for tests.
func NewStaticPolicyHolder(policy InvitePolicy) *PolicyHolder {
	holder := &PolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func (h *PolicyHolder) Get() InvitePolicy {
	return h.current.Load().(InvitePolicy)
}

func validateInvitePolicy(policy InvitePolicy) error {
	if policy.MaxBatchSize <= 0 {
		return errors.New("invites.maxBatchSize must be positive")
	}
	if policy.ExpiryDays <= 0 {
		return errors.New("invites.expiryDays must be positive")
	}
	if policy.MaxPendingPerWorkspace <= 0 {
		return errors.New("invites.maxPendingPerWorkspace must be positive")
	}
	return nil
}
