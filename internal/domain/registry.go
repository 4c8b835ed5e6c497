package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// registry хранит фабрики по имени, чтобы стёртые значения можно было
// восстановить из JSON.
type registry[T any] struct {
	mu        sync.RWMutex
	what      string
	factories map[string]func() T
}

func newRegistry[T any](what string) *registry[T] {
	return &registry[T]{what: what, factories: make(map[string]func() T)}
}

func (r *registry[T]) register(name string, factory func() T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.factories[name]; dup {
		panic(fmt.Sprintf("%s %q registered twice", r.what, name))
	}
	r.factories[name] = factory
}

func (r *registry[T]) create(name string) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("unknown %s %q", r.what, name)
	}
	return factory(), nil
}

func (r *registry[T]) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

var (
	actionRegistry   = newRegistry[Named]("action")
	strategyRegistry = newRegistry[StrategyImpl]("strategy")
)

// RegisterAction связывает имя с фабрикой. Фабрика должна возвращать
// значение, у которого ActionName() совпадает с name.
func RegisterAction(name string, factory func() Named) {
	actionRegistry.register(name, factory)
}

// LookupAction создаёт действие с параметрами по умолчанию.
func LookupAction(name string) (Action, error) {
	impl, err := actionRegistry.create(name)
	if err != nil {
		return Action{}, err
	}
	return NewAction(impl), nil
}

func ActionNames() []string { return actionRegistry.names() }

func RegisterStrategy(name string, factory func() StrategyImpl) {
	strategyRegistry.register(name, factory)
}

func LookupStrategy(name string) (Strategy, error) {
	impl, err := strategyRegistry.create(name)
	if err != nil {
		return Strategy{}, err
	}
	return NewStrategy(impl), nil
}

func StrategyNames() []string { return strategyRegistry.names() }

// erased - форма хранения стёртого значения в JSON.
type erased struct {
	Name   string          `json:"name"`
	Params json.RawMessage `json:"params,omitempty"`
}

func marshalErased(name string, impl any) ([]byte, error) {
	params, err := json.Marshal(impl)
	if err != nil {
		return nil, fmt.Errorf("marshal %s params: %w", name, err)
	}
	if string(params) == "{}" {
		params = nil
	}
	return json.Marshal(erased{Name: name, Params: params})
}

func unmarshalErased[T any](data []byte, r *registry[T]) (T, bool, error) {
	var zero T
	if string(data) == "null" {
		return zero, false, nil
	}
	var e erased
	if err := json.Unmarshal(data, &e); err != nil {
		return zero, false, err
	}
	impl, err := r.create(e.Name)
	if err != nil {
		return zero, false, err
	}
	if len(e.Params) > 0 {
		// Фабрики возвращают указатели, так что параметры пишутся на место.
		if err := json.Unmarshal(e.Params, impl); err != nil {
			return zero, false, fmt.Errorf("unmarshal %s params: %w", e.Name, err)
		}
	}
	return impl, true, nil
}
