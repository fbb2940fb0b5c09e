package records

// Record models one stored administrative entry. Column and JSON names match
// the schema the browser client was built against, including the mixed
// camelCase and snake_case field naming.
//
// Total is persisted exactly as submitted; the four addends are not summed
// server-side.
type Record struct {
	ID                       string  `gorm:"column:id;primaryKey;size:255;not null" json:"id"`
	ChalaniNumber            string  `gorm:"column:chalaniNumber;size:255" json:"chalaniNumber"`
	Date                     string  `gorm:"column:date;size:255" json:"date"`
	DartaNumber              string  `gorm:"column:dartaNumber;size:255" json:"dartaNumber"`
	DartaMiti                string  `gorm:"column:dartaMiti;size:255" json:"dartaMiti"`
	OfficeName               string  `gorm:"column:officeName;size:255" json:"officeName"`
	FiscalYear               string  `gorm:"column:fiscalYear;size:255" json:"fiscalYear"`
	Asul                     float64 `gorm:"column:asul" json:"asul"`
	Aniyamit                 float64 `gorm:"column:aniyamit" json:"aniyamit"`
	PaperProof               float64 `gorm:"column:paperProof" json:"paperProof"`
	Peski                    float64 `gorm:"column:peski" json:"peski"`
	Total                    float64 `gorm:"column:total" json:"total"`
	ChalaniNumber2           string  `gorm:"column:chalaniNumber2;size:255" json:"chalaniNumber2"`
	ChalaniDate              string  `gorm:"column:chalaniDate;size:255" json:"chalaniDate"`
	Ministry                 string  `gorm:"column:ministry;size:255" json:"ministry"`
	BarsikPratibedan         string  `gorm:"column:barsikPratibedan;size:255" json:"barsikPratibedan"`
	SamparisayadAnurodhRakam float64 `gorm:"column:samparisayad_anurodh_rakam" json:"samparisayad_anurodh_rakam"`
	LagatKattaKoBibarad      string  `gorm:"column:lagat_katta_ko_bibarad;type:text" json:"lagat_katta_ko_bibarad"`
	SamparisadHunaNasakeko   string  `gorm:"column:samparisad_huna_nasakeko;type:text" json:"samparisad_huna_nasakeko"`
}

// TableName provides the explicit table binding for GORM.
func (Record) TableName() string {
	return "records"
}
