package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/city-geo-service/internal/domain"
)

// FileSource читает каталог из JSON файла с массивом городов
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string {
	return "file:" + s.path
}

func (s *FileSource) Load(ctx context.Context) ([]domain.City, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	var cities []domain.City
	if err := json.NewDecoder(f).Decode(&cities); err != nil {
		return nil, fmt.Errorf("decode catalog file %s: %w", s.path, err)
	}

	return cities, nil
}
