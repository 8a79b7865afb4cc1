package behaviour

// PlayerBehaviour is driven by the engine loop: Start once before the first
// update, Update every rendered frame, UpdateFixed on the fixed timestep.
type PlayerBehaviour interface {
	Start()
	Update()
	UpdateFixed()
}

type BehaviourWrapper struct {
	Behaviour PlayerBehaviour
	started   bool
}

type BehaviourManager struct {
	behaviours []BehaviourWrapper
}

func NewBehaviourManager() *BehaviourManager {
	return &BehaviourManager{}
}

func (m *BehaviourManager) Add(behaviour PlayerBehaviour) {
	for i := range m.behaviours {
		if m.behaviours[i].Behaviour == behaviour {
			return
		}
	}
	m.behaviours = append(m.behaviours, BehaviourWrapper{Behaviour: behaviour, started: false})
}

func (m *BehaviourManager) Remove(behaviour PlayerBehaviour) {
	for i := range m.behaviours {
		if m.behaviours[i].Behaviour == behaviour {
			m.behaviours = append(m.behaviours[:i], m.behaviours[i+1:]...)
			return
		}
	}
}

// Len is the number of registered behaviours.
func (m *BehaviourManager) Len() int {
	return len(m.behaviours)
}

// Clear removes all behaviours from the manager
func (m *BehaviourManager) Clear() {
	m.behaviours = m.behaviours[:0]
}

// StartAll runs Start on behaviours that have not started yet, in the order
// they were added.
func (m *BehaviourManager) StartAll() {
	// Start may add behaviours; index instead of range to pick them up.
	for i := 0; i < len(m.behaviours); i++ {
		if !m.behaviours[i].started {
			m.behaviours[i].started = true
			m.behaviours[i].Behaviour.Start()
		}
	}
}

func (m *BehaviourManager) UpdateAll() {
	m.StartAll()
	for i := range m.behaviours {
		m.behaviours[i].Behaviour.Update()
	}
}

func (m *BehaviourManager) UpdateAllFixed() {
	m.StartAll()
	for i := range m.behaviours {
		m.behaviours[i].Behaviour.UpdateFixed()
	}
}
