// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package manifest

// FindFile looks up a file by name hash within dir's direct files. The
// lookup is a linear scan, matching the historical fixed-array manifest
// representation; the file counts involved (at most MaxFiles) make this
// cheap enough that no index is warranted.
func (d *DirectoryEntry) FindFile(nameHash uint32) (FileEntry, bool) {
	for _, f := range d.Files {
		if f.NameHash == nameHash {
			return f, true
		}
	}
	return FileEntry{}, false
}

// FindSubdir looks up a subdirectory by name hash within dir's
// subdirectories.
func (d *DirectoryEntry) FindSubdir(nameHash uint32) (*SubdirectoryEntry, bool) {
	for i := range d.Subdirs {
		if d.Subdirs[i].NameHash == nameHash {
			return &d.Subdirs[i], true
		}
	}
	return nil, false
}

// FindFile looks up a file by name hash within a subdirectory's files.
func (s *SubdirectoryEntry) FindFile(nameHash uint32) (FileEntry, bool) {
	for _, f := range s.Files {
		if f.NameHash == nameHash {
			return f, true
		}
	}
	return FileEntry{}, false
}

// Directory returns the manifest's directory entry at the given round
// index, or false if index is out of range.
func (m *Manifest) Directory(index int) (*DirectoryEntry, bool) {
	if index < 0 || index >= len(m.Directories) {
		return nil, false
	}
	return &m.Directories[index], true
}
