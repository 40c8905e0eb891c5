package port

type FileWalker interface {
	Walk(root string) ([]string, error)
}

type FileReader interface {
	ReadFile(path string) (string, error)
}
