package domain

// Config carries the account-system settings every usecase is built with.
type Config struct {
	ClaGroup      string   `yaml:"claGroup"`
	ClaMetaGroup  string   `yaml:"claMetaGroup"`
	AdminGroups   []string `yaml:"adminGroups"`
	LegalEmail    string   `yaml:"legalEmail"`
	AccountsEmail string   `yaml:"accountsEmail"`
	BaseURL       string   `yaml:"baseURL"` // e.g. https://admin.fedoraproject.org/accounts
}
