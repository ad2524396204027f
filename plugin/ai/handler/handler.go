// Package handler implements the module handlers the router dispatches to.
package handler

import (
	"github.com/hrygo/switchboard/plugin/ai"
	"github.com/hrygo/switchboard/plugin/ai/module"
	"github.com/hrygo/switchboard/plugin/ai/router"
	"github.com/hrygo/switchboard/plugin/remote"
)

// Deps are the collaborators shared by the handlers.
type Deps struct {
	LLM    ai.LLMService
	Config *ai.Config
	Auth   *Authenticator
	Remote *remote.Client
}

// NewTable returns a handler for every module.
func NewTable(d Deps) map[module.Module]router.Handler {
	return map[module.Module]router.Handler{
		module.General:      GeneralHandler{},
		module.Psychology:   NewPsychologyHandler(d.LLM, d.Config.ModelFor(ai.TaskPsychology)),
		module.Registration: NewRegistrationHandler(d.Auth),
		module.Login:        NewLoginHandler(d.Auth),
		module.Legal:        NewRemoteHandler(module.Legal, d.Remote),
		module.Social:       NewRemoteHandler(module.Social, d.Remote),
	}
}
