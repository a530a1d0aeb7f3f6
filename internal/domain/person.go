package domain

// PersonRecordTable is the record store table written by the external
// ingestion job.
const PersonRecordTable = "phone_data"

// PersonRecord is a read-only row of the record store. The service never
// writes this table; column names follow the ingestion job's schema.
type PersonRecord struct {
	Name           string `json:"name"           gorm:"column:name"`
	FathersName    string `json:"fathersName"    gorm:"column:fathersName"`
	PhoneNumber    string `json:"phoneNumber"    gorm:"column:phoneNumber"`
	OtherNumber    string `json:"otherNumber"    gorm:"column:otherNumber"`
	PassportNumber string `json:"passportNumber" gorm:"column:passportNumber"`
	AadharNumber   string `json:"aadharNumber"   gorm:"column:aadharNumber"`
	Age            string `json:"age"            gorm:"column:age"`
	Gender         string `json:"gender"         gorm:"column:gender"`
	Address        string `json:"address"        gorm:"column:address"`
	District       string `json:"district"       gorm:"column:district"`
	Pincode        string `json:"pincode"        gorm:"column:pincode"`
	State          string `json:"state"          gorm:"column:state"`
	Town           string `json:"town"           gorm:"column:town"`
}

// TableName returns the record store table name.
func (PersonRecord) TableName() string { return PersonRecordTable }
