package formats

import (
	"github.com/JonMunkholm/lineimport/internal/core"
	"github.com/JonMunkholm/lineimport/internal/store"
)

func init() {
	registerTodo()
}

func registerTodo() {
	core.Register(core.FormatDefinition{
		Info: core.FormatInfo{
			Key:         "todo",
			Label:       "Todo lists",
			Description: "Todo items grouped under an assignee. Replaces all todo items.",
			Example: `Assignee: Alice
Todos:
* Buy milk
* Walk the dog
---
Assignee: Bob
* Fix the bike`,
		},
		NewRunner: func(env core.Env) core.Runner {
			return newImporter[*core.TodoItem]("todo", env, core.TodoParser{}, store.NewTodoWriter(env.DB))
		},
	})
}
