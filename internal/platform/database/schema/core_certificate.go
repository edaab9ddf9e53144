package schema

// CoreCertificateTable represents the 'core.certificate' table
type CoreCertificateTable struct {
	Table        string
	ID           string
	StudentID    string
	Name         string
	ObjectKey    string
	ContentType  string
	SizeBytes    string
	StudentName  string
	StudentEmail string
	RollNumber   string
	Batch        string
	UploadedAt   string
}

// CoreCertificate is the schema definition for core.certificate
var CoreCertificate = CoreCertificateTable{
	Table:        "core.certificate",
	ID:           "id",
	StudentID:    "studentid",
	Name:         "name",
	ObjectKey:    "objectkey",
	ContentType:  "contenttype",
	SizeBytes:    "sizebytes",
	StudentName:  "studentname",
	StudentEmail: "studentemail",
	RollNumber:   "rollnumber",
	Batch:        "batch",
	UploadedAt:   "uploadedat",
}

// Columns returns all standard column names
func (t CoreCertificateTable) Columns() []string {
	return []string{
		t.ID, t.StudentID, t.Name, t.ObjectKey, t.ContentType, t.SizeBytes,
		t.StudentName, t.StudentEmail, t.RollNumber, t.Batch, t.UploadedAt,
	}
}
