package deb

// RequiredField is one of the control fields every package must carry.
type RequiredField string

// String returns the canonical spelling of the field, as written by a
// compliant control file.
func (f RequiredField) String() string { return string(f) }

const (
	FieldPackage      RequiredField = "Package"
	FieldVersion      RequiredField = "Version"
	FieldArchitecture RequiredField = "Architecture"
	FieldMaintainer   RequiredField = "Maintainer"
	FieldDescription  RequiredField = "Description"
)

// requiredFields lists, in validation order, every field a control stanza
// must carry.
var requiredFields = []RequiredField{
	FieldPackage,
	FieldVersion,
	FieldArchitecture,
	FieldMaintainer,
	FieldDescription,
}

// ForbiddenField is one of the derived index fields a source control file
// must never declare; the generator owns these.
type ForbiddenField string

func (f ForbiddenField) String() string { return string(f) }

const (
	FieldFilename       ForbiddenField = "Filename"
	FieldSize           ForbiddenField = "Size"
	FieldMD5sum         ForbiddenField = "MD5sum"
	FieldSHA1           ForbiddenField = "SHA1"
	FieldSHA256         ForbiddenField = "SHA256"
	FieldDescriptionMD5 ForbiddenField = "Description-md5"
)

var forbiddenFields = []ForbiddenField{
	FieldFilename,
	FieldSize,
	FieldMD5sum,
	FieldSHA1,
	FieldSHA256,
	FieldDescriptionMD5,
}

// controlTarNames maps a recognized ar member identifier to the
// decompression it needs before it can be read as a tar stream.
var controlTarNames = map[string]compressionKind{
	"control.tar":     compressionNone,
	"control.tar.gz":  compressionGzip,
	"control.tar.xz":  compressionXz,
	"control.tar.zst": compressionZstd,
}

type compressionKind int

const (
	compressionNone compressionKind = iota
	compressionGzip
	compressionXz
	compressionZstd
)
