// Package validator registers the custom binding tags used by request
// structs in the handlers package.
package validator

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"hubledger/internal/logger"
	"hubledger/internal/models"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ISO 4217 codes accepted for account currencies.
const currencyCodes = `
AED AFN ALL AMD ANG AOA ARS AUD AWG AZN BAM BBD BDT BGN BHD BIF
BMD BND BOB BRL BSD BTN BWP BYN BZD CAD CDF CHF CLP CNY COP CRC
CUP CVE CZK DJF DKK DOP DZD EGP ERN ETB EUR FJD FKP GBP GEL GHS
GIP GMD GNF GTQ GYD HKD HNL HRK HTG HUF IDR ILS INR IQD IRR ISK
JMD JOD JPY KES KGS KHR KMF KPW KRW KWD KYD KZT LAK LBP LKR LRD
LSL LYD MAD MDL MGA MKD MMK MNT MOP MRU MUR MVR MWK MXN MYR MZN
NAD NGN NIO NOK NPR NZD OMR PAB PEN PGK PHP PKR PLN PYG QAR RON
RSD RUB RWF SAR SBD SCR SDG SEK SGD SHP SLE SOS SRD SSP STN SVC
SYP SZL THB TJS TMT TND TOP TRY TTD TWD TZS UAH UGX USD UYU UZS
VES VND VUV WST XAF XCD XOF XPF YER ZAR ZMW ZWL
`

var validCurrencies = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, code := range strings.Fields(currencyCodes) {
		set[code] = struct{}{}
	}
	return set
}()

// rules maps each custom tag to its check.
var rules = map[string]validator.Func{
	"iso4217":          validateISO4217,
	"hex_color":        validateHexColor,
	"transaction_type": validateTransactionType,
	"category_type":    validateCategoryType,
	"account_type":     validateAccountType,
	"template_status":  validateTemplateStatus,
}

// Register installs the custom tags on gin's binding engine. It is safe to
// call more than once.
func Register() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		logger.Get().Warn("binding engine is not go-playground/validator; custom tags not registered")
		return
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			logger.Get().Errorw("failed to register validation", "tag", tag, "error", err)
		}
	}
}

func validateISO4217(fl validator.FieldLevel) bool {
	_, ok := validCurrencies[fl.Field().String()]
	return ok
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateTransactionType(fl validator.FieldLevel) bool {
	return models.TransactionType(fl.Field().String()).Valid()
}

func validateCategoryType(fl validator.FieldLevel) bool {
	switch models.CategoryType(fl.Field().String()) {
	case models.CategoryTypeIncome, models.CategoryTypeExpense:
		return true
	}
	return false
}

func validateAccountType(fl validator.FieldLevel) bool {
	switch models.AccountType(fl.Field().String()) {
	case models.AccountTypeCash, models.AccountTypeSavings, models.AccountTypeDebt:
		return true
	}
	return false
}

func validateTemplateStatus(fl validator.FieldLevel) bool {
	return models.TemplateStatus(fl.Field().String()).Valid()
}
