package domain

// Task is a node of the build graph. Name is either a category task name or
// CleanTaskName; Dependencies must finish successfully before it starts.
type Task struct {
	Name         string
	Dependencies []string
}
