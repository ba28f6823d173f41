package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

// Message keys used by the terminal front end.
const (
	KeyNotSignedIn   = "profile.notSignedIn"
	KeyLogout        = "profile.logout"
	KeyLanguage      = "profile.language"
	KeyGallery       = "tabs.gallery"
	KeyPricingTitle  = "pricing.title"
	KeyCurrentPlan   = "pricing.currentPlan"
	KeyBadgeFree     = "templateBadge.free"
	KeyBadgePaid     = "templateBadge.paid"
	KeySaved         = "result.saved"
	KeySavedHint     = "result.savedHint"
	KeyUpgradeToSave = "result.upgradeToSave"
)

var translations = map[string]map[string]string{
	"en": {
		KeyNotSignedIn:   "Not signed in",
		KeyLogout:        "Log out",
		KeyLanguage:      "Language",
		KeyGallery:       "Gallery",
		KeyPricingTitle:  "Plans & Pricing",
		KeyCurrentPlan:   "Current plan",
		KeyBadgeFree:     "Free",
		KeyBadgePaid:     "Paid",
		KeySaved:         "Saved!",
		KeySavedHint:     "Strip saved to your gallery.",
		KeyUpgradeToSave: "Upgrade to a paid plan to save this strip.",
	},
	"vi": {
		KeyNotSignedIn:   "Chưa đăng nhập",
		KeyLogout:        "Đăng xuất",
		KeyLanguage:      "Ngôn ngữ",
		KeyGallery:       "Thư viện",
		KeyPricingTitle:  "Gói dịch vụ",
		KeyCurrentPlan:   "Gói hiện tại",
		KeyBadgeFree:     "Miễn phí",
		KeyBadgePaid:     "Trả phí",
		KeySaved:         "Đã lưu!",
		KeySavedHint:     "Đã lưu strip vào thư viện.",
		KeyUpgradeToSave: "Nâng cấp gói trả phí để lưu strip này.",
	},
	"es": {
		KeyNotSignedIn:   "No has iniciado sesión",
		KeyLogout:        "Cerrar sesión",
		KeyLanguage:      "Idioma",
		KeyGallery:       "Galería",
		KeyPricingTitle:  "Planes y precios",
		KeyCurrentPlan:   "Plan actual",
		KeyBadgeFree:     "Gratis",
		KeyBadgePaid:     "De pago",
		KeySaved:         "¡Guardado!",
		KeySavedHint:     "Strip guardado en tu galería.",
		KeyUpgradeToSave: "Actualiza a un plan de pago para guardar este strip.",
	},
	"fr": {
		KeyNotSignedIn:   "Non connecté",
		KeyLogout:        "Déconnexion",
		KeyLanguage:      "Langue",
		KeyGallery:       "Galerie",
		KeyPricingTitle:  "Forfaits et tarifs",
		KeyCurrentPlan:   "Forfait actuel",
		KeyBadgeFree:     "Gratuit",
		KeyBadgePaid:     "Payant",
		KeySaved:         "Enregistré !",
		KeySavedHint:     "Strip enregistré dans votre galerie.",
		KeyUpgradeToSave: "Passez à un forfait payant pour enregistrer ce strip.",
	},
	"ja": {
		KeyNotSignedIn:   "未ログイン",
		KeyLogout:        "ログアウト",
		KeyLanguage:      "言語",
		KeyGallery:       "ギャラリー",
		KeyPricingTitle:  "プランと料金",
		KeyCurrentPlan:   "現在のプラン",
		KeyBadgeFree:     "無料",
		KeyBadgePaid:     "有料",
		KeySaved:         "保存しました！",
		KeySavedHint:     "ストリップをギャラリーに保存しました。",
		KeyUpgradeToSave: "このストリップを保存するには有料プランにアップグレードしてください。",
	},
	"zh": {
		KeyNotSignedIn:   "未登录",
		KeyLogout:        "退出登录",
		KeyLanguage:      "语言",
		KeyGallery:       "图库",
		KeyPricingTitle:  "套餐与价格",
		KeyCurrentPlan:   "当前套餐",
		KeyBadgeFree:     "免费",
		KeyBadgePaid:     "付费",
		KeySaved:         "已保存！",
		KeySavedHint:     "已保存到相册。",
		KeyUpgradeToSave: "升级付费套餐以保存此照片条。",
	},
	"fil": {
		KeyNotSignedIn:   "Hindi naka-sign in",
		KeyLogout:        "Mag-log out",
		KeyLanguage:      "Wika",
		KeyGallery:       "Gallery",
		KeyPricingTitle:  "Mga plano at presyo",
		KeyCurrentPlan:   "Kasalukuyang plano",
		KeyBadgeFree:     "Libre",
		KeyBadgePaid:     "Bayad",
		KeySaved:         "Naka-save!",
		KeySavedHint:     "Naka-save ang strip sa iyong gallery.",
		KeyUpgradeToSave: "Mag-upgrade sa paid plan para ma-save ang strip na ito.",
	},
	"my": {
		KeyNotSignedIn:   "မဝင်ရောက်ရသေးပါ",
		KeyLogout:        "ထွက်မည်",
		KeyLanguage:      "ဘာသာစကား",
		KeyGallery:       "ပြခန်း",
		KeyPricingTitle:  "အစီအစဉ်နှင့်ဈေးနှုန်း",
		KeyCurrentPlan:   "လက်ရှိအစီအစဉ်",
		KeyBadgeFree:     "အခမဲ့",
		KeyBadgePaid:     "ငွေပေးချေပါ",
		KeySaved:         "သိမ်းပြီး!",
		KeySavedHint:     "သင့်ပြခန်းသို့သိမ်းပြီး။",
		KeyUpgradeToSave: "ဤ strip ကိုသိမ်းရန် ငွေပေးအစီအစဉ်သို့ မြှင့်ပါ။",
	},
}

var builder = func() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for code, msgs := range translations {
		tag := language.MustParse(code)
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}()

// T returns the string for key in code, falling back to English and then
// to the key itself.
func T(code, key string) string {
	if msg, ok := translations[Normalize(code)][key]; ok {
		return msg
	}
	if msg, ok := translations[Default][key]; ok {
		return msg
	}
	return key
}
