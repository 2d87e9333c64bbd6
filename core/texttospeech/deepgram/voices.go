package deepgram

type deepgramVoice string

const (
	VoiceAsteriaEN  deepgramVoice = "aura-2-asteria-en"
	VoiceThaliaEN   deepgramVoice = "aura-2-thalia-en"
	VoiceOrionEN    deepgramVoice = "aura-2-orion-en"
	VoiceArcasEN    deepgramVoice = "aura-2-arcas-en"
	VoicePandoraFR  deepgramVoice = "aura-2-pandora-fr"
	VoiceCelesteFR  deepgramVoice = "aura-2-celeste-fr"
	VoiceHyperionFR deepgramVoice = "aura-2-hyperion-fr"
)

const defaultVoice = VoicePandoraFR

func GetAvailableVoices() []deepgramVoice {
	return []deepgramVoice{
		VoiceAsteriaEN,
		VoiceThaliaEN,
		VoiceOrionEN,
		VoiceArcasEN,
		VoicePandoraFR,
		VoiceCelesteFR,
		VoiceHyperionFR,
	}
}
