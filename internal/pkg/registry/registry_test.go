package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeModule struct {
	name     string
	priority int
	initErr  error
	order    *[]string
}

func (m *fakeModule) Name() string  { return m.name }
func (m *fakeModule) Priority() int { return m.priority }
func (m *fakeModule) Init(ctx *ModuleContext) error {
	*m.order = append(*m.order, m.name)
	return m.initErr
}

func withRegistry(t *testing.T) {
	saved := moduleRegistry
	moduleRegistry = make(map[string]Module)
	t.Cleanup(func() { moduleRegistry = saved })
}

func TestInitModulesByPriority(t *testing.T) {
	withRegistry(t)
	var order []string
	Register(&fakeModule{name: "order", priority: 30, order: &order})
	Register(&fakeModule{name: "catalog", priority: 5, order: &order})
	Register(&fakeModule{name: "cart", priority: 20, order: &order})
	Register(&fakeModule{name: "address", priority: 20, order: &order})

	err := InitModules(&ModuleContext{})

	assert.NoError(t, err)
	assert.Equal(t, []string{"catalog", "address", "cart", "order"}, order)
}

func TestInitModulesStopsOnError(t *testing.T) {
	withRegistry(t)
	var order []string
	Register(&fakeModule{name: "a", priority: 1, order: &order, initErr: errors.New("boom")})
	Register(&fakeModule{name: "b", priority: 2, order: &order})

	err := InitModules(&ModuleContext{})

	assert.EqualError(t, err, "boom")
	assert.Equal(t, []string{"a"}, order)
}
