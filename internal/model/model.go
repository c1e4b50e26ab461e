// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

// package model defines the core data structures used throughout SSHHub.
// These structs represent the entities that are persisted by the stores and
// shown by the user interface.
package model // import "github.com/toeirei/sshhub/internal/model"

import (
	"fmt"
	"net"
	"sort"
	"strconv"
)

const (
	// DefaultExec is the launch template used when none is configured.
	DefaultExec = "ssh {$Username}@{$IP} -p {$Port}"
	// DefaultPort is the SSH port assumed when a target does not set one.
	DefaultPort = 22
)

// Target represents a single SSH destination (e.g., root@10.0.0.5:22).
// This is the core entity the registry manages.
type Target struct {
	ID         int    `json:"id"`
	Name       string `json:"Name"`
	Host       string `json:"IP"`
	Port       int    `json:"Port"`
	Username   string `json:"Username"`
	ScanOnline bool   `json:"ScanOnline"`
}

// String returns the user@host:port representation.
func (t Target) String() string {
	return fmt.Sprintf("%s@%s:%d", t.Username, t.Host, t.EffectivePort())
}

// EffectivePort returns the configured port, or DefaultPort when unset.
func (t Target) EffectivePort() int {
	if t.Port <= 0 {
		return DefaultPort
	}
	return t.Port
}

// Address returns the host:port pair used for dialing.
func (t Target) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.EffectivePort()))
}

// Registry is the unit of persistence: the launch template plus every target.
type Registry struct {
	Exec    string   `json:"Exec"`
	Targets []Target `json:"Targets"`
}

// NewRegistry returns an empty registry with the default launch template.
func NewRegistry() *Registry {
	return &Registry{Exec: DefaultExec, Targets: []Target{}}
}

// Clone returns a deep copy of the registry.
func (r *Registry) Clone() *Registry {
	if r == nil {
		return nil
	}
	targets := make([]Target, len(r.Targets))
	copy(targets, r.Targets)
	return &Registry{Exec: r.Exec, Targets: targets}
}

// SortTargets orders targets ascending by id, in place.
func SortTargets(targets []Target) {
	sort.SliceStable(targets, func(i, j int) bool { return targets[i].ID < targets[j].ID })
}

// ProbeStatus is the transient reachability classification of a target.
type ProbeStatus int

const (
	NotScanned ProbeStatus = iota
	Online
	Offline
	Error
)

// String returns the display name of the status.
func (s ProbeStatus) String() string {
	switch s {
	case Online:
		return "Online"
	case Offline:
		return "Offline"
	case Error:
		return "Error"
	default:
		return "NotScanned"
	}
}
