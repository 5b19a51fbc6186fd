package catalog

// Kind は参照データの種別です。
type Kind string

const (
	KindCountry            Kind = "country"
	KindArea               Kind = "area"
	KindIdentificationType Kind = "identification_type"
)

// Country は国の参照データです。Name は社用メールのドメイン解決にも利用されます。
type Country struct {
	ID   int64  `json:"id"`
	Code string `json:"codigo"`
	Name string `json:"nombre"`
}

// Area は所属部署の参照データです。
type Area struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

// IdentificationType は身分証明書種別の参照データです。
type IdentificationType struct {
	ID           int64  `json:"id"`
	Abbreviation string `json:"abrev"`
	Name         string `json:"nombre"`
}
