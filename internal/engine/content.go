package engine

// CharacterTemplates is the pool characters are dealt from at game start.
var CharacterTemplates = []CharacterTemplate{
	{Name: "Anthony", Age: 4, MaxSleep: 12, Description: "A curious little one."},
	{Name: "Austin", Age: 8, MaxSleep: 10, Description: "Energetic and playful."},
	{Name: "Bee", Age: 10, MaxSleep: 9, Description: "Always buzzing with activity."},
	{Name: "Bell", Age: 30, MaxSleep: 7, Description: "Rings true to her responsibilities."},
	{Name: "Bey", Age: 5, MaxSleep: 11, Description: "Sweet and sleepy."},
	{Name: "Boy", Age: 8, MaxSleep: 10, Description: "Full of youthful spirit."},
	{Name: "Brian", Age: 15, MaxSleep: 9, Description: "Navigating teenage dreams."},
	{Name: "Chris", Age: 29, MaxSleep: 7, Description: "A seasoned individual."},
	{Name: "Fiona", Age: 60, MaxSleep: 8, Description: "Wise and serene."},
	{Name: "Gel", Age: 4, MaxSleep: 12, Description: "Soft and squishy, loves naps."},
	{Name: "Goku", Age: 25, MaxSleep: 8, Description: "Always ready for an adventure, or a nap."},
	{Name: "Hero", Age: 6, MaxSleep: 10, Description: "Aspiring to great feats, but needs rest."},
	{Name: "Jeejee", Age: 17, MaxSleep: 9, Description: "Always on the go."},
	{Name: "Jerico", Age: 36, MaxSleep: 7, Description: "Building dreams and needing sleep."},
	{Name: "Joe", Age: 55, MaxSleep: 7, Description: "Enjoys quiet evenings."},
	{Name: "Kate", Age: 70, MaxSleep: 8, Description: "A lifetime of experience."},
	{Name: "Lee", Age: 71, MaxSleep: 8, Description: "Finding peace in slumber."},
	{Name: "Lila", Age: 69, MaxSleep: 8, Description: "Graceful and calm."},
	{Name: "Luna", Age: 22, MaxSleep: 8, Description: "Night owl, needs her beauty sleep."},
	{Name: "Martin", Age: 10, MaxSleep: 9, Description: "A little dreamer."},
	{Name: "Micheal", Age: 6, MaxSleep: 10, Description: "Full of innocent wonder."},
	{Name: "Mike", Age: 1, MaxSleep: 14, Description: "Needs lots of sleep to grow big and strong."},
	{Name: "Nena", Age: 1, MaxSleep: 14, Description: "Tiny and always sleepy."},
	{Name: "Rich", Age: 3, MaxSleep: 13, Description: "Loves toys and quiet time."},
	{Name: "Roxy", Age: 14, MaxSleep: 9, Description: "Energetic teenager."},
	{Name: "Violet", Age: 50, MaxSleep: 7, Description: "A vibrant personality."},
	{Name: "Wendy", Age: 57, MaxSleep: 7, Description: "Always puts comfort first."},
	{Name: "William", Age: 80, MaxSleep: 8, Description: "Cherishes every moment of rest."},
	{Name: "Zeno", Age: 19, MaxSleep: 8, Description: "Exploring new horizons."},
}

// CardTemplates is the draw pool. Weight is Rarity scaled by RarityScale.
var CardTemplates = []Card{
	{Name: "Acid_reflux", Type: CardAttack, Effect: Effect{Kind: EffectReduceSleep, Value: -2}, Rarity: 1.0, Description: "Causes discomfort, making sleep harder."},
	{Name: "Depressed", Type: CardAttack, Effect: Effect{Kind: EffectReduceSleep, Value: -3}, Rarity: 1.0, Description: "A heavy mind that steals away sleep."},
	{Name: "Eye_patch", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 1}, Rarity: 1.0, Description: "Helps block out light for a quick nap."},
	{Name: "Massage_under_the_ears", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 1}, Rarity: 1.0, Description: "A soothing touch to invite slumber."},
	{Name: "Sleep_with_the_lights_off", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 2}, Rarity: 1.0, Description: "Darkness deepens the sleep."},
	{Name: "Stress_reducing_music", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 1}, Rarity: 1.0, Description: "Calming tunes for a peaceful mind."},
	{Name: "Banana", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 1}, Rarity: 1.0, Description: "A potassium boost for better rest."},
	{Name: "Dont_sleep_during_the_day", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 2}, Rarity: 1.0, Description: "Saves up all sleep for the night."},
	{Name: "Free_from_odor_pollution", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 1}, Rarity: 1.0, Description: "A clean scent promotes deep sleep."},
	{Name: "Meditate", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 2}, Rarity: 1.0, Description: "Calm your mind for restful sleep."},
	{Name: "Sleeping_pills", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 2}, Rarity: 1.0, Description: "A little help to fall asleep."},
	{Name: "Stressed", Type: CardAttack, Effect: Effect{Kind: EffectReduceSleep, Value: -2}, Rarity: 1.0, Description: "Worries keep slumber at bay."},
	{Name: "Bright_room", Type: CardAttack, Effect: Effect{Kind: EffectReduceSleep, Value: -1}, Rarity: 1.0, Description: "Light disrupts the sleep cycle."},
	{Name: "Drink_alcohol", Type: CardAttack, Effect: Effect{Kind: EffectReduceSleep, Value: -2}, Rarity: 1.0, Description: "Alcohol may induce sleep but disrupts quality."},
	{Name: "Fresh_air", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 1}, Rarity: 1.0, Description: "A cool breeze makes for cozy sleep."},
	{Name: "Nightmare", Type: CardAttack, Effect: Effect{Kind: EffectReduceSleep, Value: -2}, Rarity: 1.0, Description: "Terrifying dreams steal away rest."},
	{Name: "Smoking", Type: CardAttack, Effect: Effect{Kind: EffectReduceSleep, Value: -3}, Rarity: 1.0, Description: "Nicotine keeps the body awake."},
	{Name: "Tea", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 1}, Rarity: 1.0, Description: "A warm cup of calming tea."},
	{Name: "Coffee", Type: CardAttack, Effect: Effect{Kind: EffectReduceSleep, Value: -2}, Rarity: 1.0, Description: "Caffeine keeps the mind alert."},
	{Name: "Drink_water", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 2}, Rarity: 1.0, Description: "Hydration is key to healthy sleep."},
	{Name: "Go_to_bed_on_time", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 2}, Rarity: 1.0, Description: "Consistency builds a strong sleep cycle."},
	{Name: "No_noise", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 1}, Rarity: 1.0, Description: "A silent environment for peaceful rest."},
	{Name: "Snoring", Type: CardAttack, Effect: Effect{Kind: EffectReduceSleep, Value: -1}, Rarity: 1.0, Description: "Loud noises disrupt everyone's sleep."},
	{Name: "Using_phone", Type: CardAttack, Effect: Effect{Kind: EffectReduceSleep, Value: -3}, Rarity: 1.0, Description: "Blue light disturbs natural sleep patterns."},
	{Name: "Cold_weather", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 2}, Rarity: 1.0, Description: "A chilly room can be surprisingly cozy."},
	{Name: "Eat_a_heavy_meal", Type: CardAttack, Effect: Effect{Kind: EffectReduceSleep, Value: -2}, Rarity: 1.0, Description: "Digestion makes sleeping difficult."},
	{Name: "Good_income", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 2}, Rarity: 1.0, Description: "Financial security brings peace of mind."},
	{Name: "Not_coffee", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 2}, Rarity: 1.0, Description: "Avoiding stimulants helps promote sleep."},
	{Name: "Socialize_well", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 2}, Rarity: 1.0, Description: "Good connections ease the mind for sleep."},
	{Name: "Work_life_balance", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 2}, Rarity: 1.0, Description: "Achieving balance leads to healthier sleep."},
	{Name: "Cool_colors", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 1}, Rarity: 1.0, Description: "Soothing colors create a relaxing atmosphere."},
	{Name: "Eat_a_light_meal", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 1}, Rarity: 1.0, Description: "Easy digestion for peaceful sleep."},
	{Name: "Hot_milk", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 1}, Rarity: 1.0, Description: "A classic remedy for sweet dreams."},
	{Name: "Not_exercising", Type: CardAttack, Effect: Effect{Kind: EffectReduceSleep, Value: -2}, Rarity: 1.0, Description: "Lack of activity can make falling asleep harder."},
	{Name: "Stay_up_late", Type: CardAttack, Effect: Effect{Kind: EffectReduceSleep, Value: -3}, Rarity: 1.0, Description: "Significantly reduces sleep, impacting health."},
	{Name: "Cough", Type: CardAttack, Effect: Effect{Kind: EffectReduceSleep, Value: -1}, Rarity: 1.0, Description: "A persistent cough disrupts peaceful sleep."},
	{Name: "Eat_and_then_sleep", Type: CardAttack, Effect: Effect{Kind: EffectReduceSleep, Value: -2}, Rarity: 1.0, Description: "Eating right before bed can lead to discomfort."},
	{Name: "Hot_weather", Type: CardAttack, Effect: Effect{Kind: EffectReduceSleep, Value: -1}, Rarity: 1.0, Description: "Heat makes it difficult to find comfort in bed."},
	{Name: "Odor_pollution", Type: CardAttack, Effect: Effect{Kind: EffectReduceSleep, Value: -1}, Rarity: 1.0, Description: "Unpleasant smells hinder relaxation."},
	{Name: "Stomach_ache", Type: CardAttack, Effect: Effect{Kind: EffectReduceSleep, Value: -2}, Rarity: 1.0, Description: "Pain keeps the body from resting."},
	{Name: "Dark_room", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 2}, Rarity: 1.0, Description: "A dark room promotes melatonin production."},
	{Name: "Exercising", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 2}, Rarity: 1.0, Description: "Physical activity helps to tire the body."},
	{Name: "Loud", Type: CardAttack, Effect: Effect{Kind: EffectReduceSleep, Value: -2}, Rarity: 1.0, Description: "Excessive noise makes sleep impossible."},
	{Name: "Sick", Type: CardAttack, Effect: Effect{Kind: EffectReduceSleep, Value: -3}, Rarity: 1.0, Description: "Illness severely impacts sleep quality."},
	{Name: "Stop_using_phone", Type: CardSupport, Effect: Effect{Kind: EffectAddSleep, Value: 3}, Rarity: 1.0, Description: "Avoiding screens before bed improves sleep."},
	{Name: "Lucky", Type: CardLucky, Effect: Effect{Kind: EffectForceSleep}, Rarity: 0.2, Description: "Force your character to sleep instantly!"},
	{Name: "Thief", Type: CardSteal, Effect: Effect{Kind: EffectStealCards}, Rarity: 0.1, Description: "Steal all cards from your opponent's hand!"},
	{Name: "Swap", Type: CardSwap, Effect: Effect{Kind: EffectSwapCards}, Rarity: 0.3, Description: "Swap cards with your opponent!"},
	{Name: "Defense_Card", Type: CardDefense, Effect: Effect{Kind: EffectNullifyAction}, Rarity: 0.5, Description: "Nullifies an opponent's action against you!"},
}
