package robot

// Fixtures returns a small, valid robot collection for development databases.
func Fixtures() []Fields {
	return []Fields{
		{Name: "R2D2", Label: "Astromech droid", Year: 1977, Type: TypeService},
		{Name: "C3PO", Label: "Protocol droid", Year: 1977, Type: TypeService},
		{Name: "Unimate", Label: "First industrial arm", Year: 1961, Type: TypeIndustrial},
		{Name: "da Vinci", Label: "Surgical system", Year: 2000, Type: TypeMedical},
		{Name: "NAO", Label: "Humanoid classroom robot", Year: 2008, Type: TypeEducational},
		{Name: "Shakey", Label: "Mobile reasoning robot", Year: 1966, Type: TypeOther},
		{Name: "KUKA KR", Label: "Six-axis welding robot", Year: 1973, Type: TypeIndustrial},
		{Name: "Roomba", Label: "Vacuum cleaning robot", Year: 2002, Type: TypeService},
	}
}
