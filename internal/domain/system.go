package domain

// AppSettings receipt header data and register behavior flags
type AppSettings struct {
	CompanyName       string `json:"companyName" mapstructure:"companyName" validate:"required,max=120"`
	TaxID             string `json:"taxId,omitempty" mapstructure:"taxId" validate:"omitempty,max=32"`
	Address           string `json:"address,omitempty" mapstructure:"address" validate:"omitempty,max=200"`
	Phone             string `json:"phone,omitempty" mapstructure:"phone" validate:"omitempty,max=40"`
	ReceiptFooter     string `json:"receiptFooter,omitempty" mapstructure:"receiptFooter" validate:"omitempty,max=200"`
	EnableStockAlerts bool   `json:"enableStockAlerts" mapstructure:"enableStockAlerts"`
	SoundEnabled      bool   `json:"soundEnabled" mapstructure:"soundEnabled"`
	LowSpecMode       bool   `json:"lowSpecMode" mapstructure:"lowSpecMode"`
}

const DefaultReceiptFooter = "Thank you for your preference!"

func DefaultSettings() AppSettings {
	return AppSettings{
		CompanyName:       "LS Utensils & Variety",
		TaxID:             "00.000.000/0001-00",
		Address:           "123 Example St - Downtown",
		Phone:             "(11) 99999-9999",
		ReceiptFooter:     DefaultReceiptFooter,
		EnableStockAlerts: true,
		SoundEnabled:      true,
		LowSpecMode:       false,
	}
}
