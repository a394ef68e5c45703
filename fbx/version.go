package fbx

import "fmt"

// Version is an FBX file version such as 7400 (7.4.0).
type Version uint32

const (
	MinVersion Version = 7000
	MaxVersion Version = 8000 // exclusive

	DefaultVersion Version = 7400

	// Binary node records use 64bit offsets from this version.
	largeOffsetVersion Version = 7500
)

func (v Version) Major() uint32 {
	return uint32(v) / 1000
}

func (v Version) Minor() uint32 {
	return uint32(v) % 1000 / 100
}

func (v Version) Revision() uint32 {
	return uint32(v) % 100
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Revision())
}

// Validate reports ErrUnsupportedVersion unless MinVersion <= v < MaxVersion.
func (v Version) Validate() error {
	if v < MinVersion || v >= MaxVersion {
		return &Error{Pos: -1, Kind: KindUnsupportedVersion, Version: v}
	}
	return nil
}
