package server

// CoreState bundles every piece of shared server state behind one struct
// instead of package-level globals (the original reaches for
// LazyLock<Arc<Mutex<...>>> statics in server/src/data.rs; Go has no
// equivalent of a lazily-initialized static, and a plain struct threaded
// through the listener is the idiomatic replacement).
type CoreState struct {
	Clients       *ClientRegistry
	Conversations *ConversationStore
	Groups        *GroupStore
	Processor     *CommandProcessor
	Router        *Router
}

// NewCoreState wires up a fresh, empty server state.
func NewCoreState() *CoreState {
	clients := NewClientRegistry()
	conversations := NewConversationStore()
	groups := NewGroupStore()
	return &CoreState{
		Clients:       clients,
		Conversations: conversations,
		Groups:        groups,
		Processor:     NewCommandProcessor(clients, conversations, groups),
		Router:        NewRouter(conversations, groups, clients),
	}
}
