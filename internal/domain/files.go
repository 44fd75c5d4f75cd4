package domain

import "time"

const DefaultFileLanguage = "cpp"

// RoomFile is one entry of a room's durable file set. Name is unique
// within a room.
type RoomFile struct {
	Name      string    `json:"name" bson:"name"`
	Content   string    `json:"content" bson:"content"`
	Language  string    `json:"language" bson:"language"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

const defaultFileContent = "#include <iostream>\n\nint main() {\n  std::cout << \"Hello world\" << std::endl;\n  return 0;\n}"

// DefaultFileSet seeds a brand-new room with a single main.cpp.
func DefaultFileSet(now time.Time) []RoomFile {
	return []RoomFile{{
		Name:      "main.cpp",
		Content:   defaultFileContent,
		Language:  DefaultFileLanguage,
		UpdatedAt: now,
	}}
}
