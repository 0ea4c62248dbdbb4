package requisitionservice

import "sync"

// Registry guarda um Workflow por usuário, criado no primeiro acesso.
type Registry struct {
	deps      Dependencies
	mu        sync.Mutex
	workflows map[string]*Workflow
}

// NewRegistry cria o registro; todos os fluxos compartilham deps.
func NewRegistry(deps Dependencies) *Registry {
	return &Registry{deps: deps, workflows: make(map[string]*Workflow)}
}

// Get devolve o fluxo de actorID, criando-o se necessário.
func (r *Registry) Get(actorID string) *Workflow {
	r.mu.Lock()
	defer r.mu.Unlock()

	wf, ok := r.workflows[actorID]
	if !ok {
		wf = NewWorkflow(r.deps)
		r.workflows[actorID] = wf
		r.deps.Logger.Debug("Fluxo de requisição criado.", map[string]interface{}{"user_id": actorID})
	}
	return wf
}

// Len devolve o número de fluxos ativos.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workflows)
}
